package models

import "time"

// PendingCredential is a signup waiting for payment confirmation. The
// password is stored as a bcrypt hash, never in cleartext.
type PendingCredential struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PendingCredential) TableName() string { return "pending_credentials" }

// ApprovedUser is a credential promoted after a confirmed payment.
type ApprovedUser struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (ApprovedUser) TableName() string { return "approved_users" }
