package store

import (
	"context"
	"fmt"

	"membership_backend/internal/config"
	"membership_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// TransactionStore keeps payment transactions keyed by transaction ID.
// A nil record with a nil error means "not found". Create overwrites an
// existing record: no duplicate detection is part of the contract.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	Get(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
	// Update merges the partial update and returns the merged record, or
	// nil when the transaction does not exist. A PAID transaction never
	// regresses to another status, whatever the update says.
	Update(ctx context.Context, transactionID string, upd models.TransactionUpdate) (*models.PaymentTransaction, error)
	GetAll(ctx context.Context) ([]models.PaymentTransaction, error)
	GetByStatus(ctx context.Context, status models.TransactionStatus) ([]models.PaymentTransaction, error)
	GetByPlan(ctx context.Context, planID string) ([]models.PaymentTransaction, error)
	// CleanupExpired flips PENDING transactions past their expiry to
	// EXPIRED in place and returns how many were flipped.
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionStore keeps membership sessions keyed by session ID.
type SessionStore interface {
	Create(ctx context.Context, s *models.UserSession) error
	// Get deletes and hides the record when it is past its expiry, and
	// refreshes lastAccessAt otherwise. Use Lookup for a side-effect-free
	// read.
	Get(ctx context.Context, sessionID string) (*models.UserSession, error)
	// Lookup is a pure read: no expiry deletion, no access touch.
	Lookup(ctx context.Context, sessionID string) (*models.UserSession, error)
	Update(ctx context.Context, sessionID string, upd models.SessionUpdate) (*models.UserSession, error)
	// Deactivate flags the session inactive without deleting it. It
	// reports whether the session existed; deactivating a missing or
	// already-inactive session is not an error.
	Deactivate(ctx context.Context, sessionID string) (bool, error)
	// GetByTransaction returns the first active session referencing the
	// transaction, or nil.
	GetByTransaction(ctx context.Context, transactionID string) (*models.UserSession, error)
	GetActiveSessions(ctx context.Context) ([]models.UserSession, error)
	// CleanupExpired hard-deletes every session past its expiry, active
	// or not, and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)
	// Extend moves the expiry to now + days and returns the updated
	// record, or nil when the session does not exist.
	Extend(ctx context.Context, sessionID string, days int) (*models.UserSession, error)
	Stats(ctx context.Context) (models.SessionStats, error)
}

// NewTransactionStore builds the backend selected by configuration.
func NewTransactionStore(cfg *config.Config) (TransactionStore, error) {
	switch cfg.Store.Type {
	case "memory", "":
		return NewMemoryTransactionStore(), nil
	case "redis":
		return NewRedisTransactionStore(newRedisClient(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

// NewSessionStore builds the backend selected by configuration.
func NewSessionStore(cfg *config.Config) (SessionStore, error) {
	switch cfg.Store.Type {
	case "memory", "":
		return NewMemorySessionStore(), nil
	case "redis":
		return NewRedisSessionStore(newRedisClient(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Store.RedisAddr,
		Password: cfg.Store.RedisPassword,
		DB:       cfg.Store.RedisDB,
	})
}
