package repositories

import (
	"context"
	"sync"
	"time"

	"membership_backend/internal/models"
)

// MemoryCredentialRepository backs deployments without a database (and
// the tests). Same promotion semantics as the gorm implementation.
type MemoryCredentialRepository struct {
	mu       sync.RWMutex
	pending  map[string]*models.PendingCredential
	approved map[string]*models.ApprovedUser
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		pending:  make(map[string]*models.PendingCredential),
		approved: make(map[string]*models.ApprovedUser),
	}
}

func (r *MemoryCredentialRepository) UpsertPending(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.pending[email]; ok {
		existing.PasswordHash = passwordHash
		existing.UpdatedAt = now
		return nil
	}
	r.pending[email] = &models.PendingCredential{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return nil
}

func (r *MemoryCredentialRepository) FindPending(_ context.Context, email string) (*models.PendingCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending, ok := r.pending[email]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	cp := *pending
	return &cp, nil
}

func (r *MemoryCredentialRepository) PromoteToApproved(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.pending[email]
	if !ok {
		return nil
	}

	if _, already := r.approved[email]; !already {
		r.approved[email] = &models.ApprovedUser{
			Email:        pending.Email,
			PasswordHash: pending.PasswordHash,
			CreatedAt:    time.Now(),
		}
	}
	delete(r.pending, email)
	return nil
}

func (r *MemoryCredentialRepository) IsApproved(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.approved[email]
	return ok, nil
}
