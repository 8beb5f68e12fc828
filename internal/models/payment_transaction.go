package models

import "time"

// Customer holds the buyer data captured at checkout. Only name and email
// are required downstream (credential promotion, receipt email).
type Customer struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
}

// PaymentTransaction is one PIX charge. Amount is stored in centavos.
type PaymentTransaction struct {
	TransactionID  string            `json:"transactionId"`
	PlanID         string            `json:"planId"`
	Amount         int64             `json:"amount"`
	Status         TransactionStatus `json:"status"`
	PixCopiaECola  string            `json:"pixCopiaECola"`
	QRCodeBase64   string            `json:"qrcodeBase64,omitempty"`
	QRCodeImageURL string            `json:"qrcodeImageUrl,omitempty"`
	ExpiresAt      time.Time         `json:"expiresAt"`
	CreatedAt      time.Time         `json:"createdAt"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
	Customer       *Customer         `json:"customer,omitempty"`
}

// TransactionUpdate is a partial update merged into a stored transaction.
// Nil fields are left untouched.
type TransactionUpdate struct {
	Status *TransactionStatus
	PaidAt *time.Time
}

// TransactionSummary is the per-status breakdown returned by the admin
// transactions endpoint.
type TransactionSummary struct {
	Pending   int `json:"pending"`
	Paid      int `json:"paid"`
	Expired   int `json:"expired"`
	Cancelled int `json:"cancelled"`
}
