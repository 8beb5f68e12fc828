package models

import "time"

// DeviceInfo is captured from request headers when a session is created.
type DeviceInfo struct {
	UserAgent string `json:"userAgent,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// UserSession is the server-side mirror of an issued membership token.
// The signed cookie is the credential; this record exists for revocation
// and operational metadata.
type UserSession struct {
	SessionID     string      `json:"sessionId"`
	TransactionID string      `json:"transactionId"`
	PlanID        string      `json:"planId"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastAccessAt  time.Time   `json:"lastAccessAt"`
	ExpiresAt     time.Time   `json:"expiresAt"`
	IsActive      bool        `json:"isActive"`
	DeviceInfo    *DeviceInfo `json:"deviceInfo,omitempty"`
}

// SessionUpdate is a partial update merged into a stored session.
type SessionUpdate struct {
	ExpiresAt *time.Time
	IsActive  *bool
}

// SessionStats is the aggregate view returned by the admin sessions endpoint.
type SessionStats struct {
	Total   int            `json:"total"`
	Active  int            `json:"active"`
	Expired int            `json:"expired"`
	ByPlan  map[string]int `json:"byPlan"`
}
