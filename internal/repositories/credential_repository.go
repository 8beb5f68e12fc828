package repositories

import (
	"context"
	"errors"

	"membership_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository is the external credential store: signups wait in
// pending_credentials and move to approved_users once a payment is
// confirmed.
type CredentialRepository interface {
	// UpsertPending records a signup, replacing the password hash when
	// the email already has a pending credential.
	UpsertPending(ctx context.Context, email, passwordHash string) error
	FindPending(ctx context.Context, email string) (*models.PendingCredential, error)
	// PromoteToApproved moves the pending credential for an email into
	// approved_users and deletes the pending record. Idempotent: when
	// nothing is pending, or the user is already approved, it cleans up
	// and succeeds.
	PromoteToApproved(ctx context.Context, email string) error
	IsApproved(ctx context.Context, email string) (bool, error)
}

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) UpsertPending(ctx context.Context, email, passwordHash string) error {
	pending := &models.PendingCredential{
		Email:        email,
		PasswordHash: passwordHash,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
		}).
		Create(pending).Error
}

func (r *GormCredentialRepository) FindPending(ctx context.Context, email string) (*models.PendingCredential, error) {
	var pending models.PendingCredential
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *GormCredentialRepository) PromoteToApproved(ctx context.Context, email string) error {
	pending, err := r.FindPending(ctx, email)
	if errors.Is(err, ErrCredentialNotFound) {
		// Already promoted, or the customer never signed up. Not an error.
		return nil
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		approved := &models.ApprovedUser{
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(approved).Error
		if err != nil {
			return err
		}
		return tx.Where("email = ?", email).Delete(&models.PendingCredential{}).Error
	})
}

func (r *GormCredentialRepository) IsApproved(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ApprovedUser{}).
		Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
