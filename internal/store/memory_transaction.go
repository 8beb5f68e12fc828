package store

import (
	"context"
	"sync"
	"time"

	"membership_backend/internal/models"
)

// MemoryTransactionStore is the in-process map backend. All mutations hold
// the write lock, so the PAID-is-terminal rule in Update holds under
// concurrent webhook and poll traffic.
type MemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]*models.PaymentTransaction
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		transactions: make(map[string]*models.PaymentTransaction),
	}
}

func (s *MemoryTransactionStore) Create(_ context.Context, tx *models.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tx
	s.transactions[tx.TransactionID] = &cp
	return nil
}

func (s *MemoryTransactionStore) Get(_ context.Context, transactionID string) (*models.PaymentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (s *MemoryTransactionStore) Update(_ context.Context, transactionID string, upd models.TransactionUpdate) (*models.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[transactionID]
	if !ok {
		return nil, nil
	}

	applyTransactionUpdate(tx, upd)
	cp := *tx
	return &cp, nil
}

func (s *MemoryTransactionStore) GetAll(_ context.Context) ([]models.PaymentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PaymentTransaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, *tx)
	}
	return out, nil
}

func (s *MemoryTransactionStore) GetByStatus(_ context.Context, status models.TransactionStatus) ([]models.PaymentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PaymentTransaction
	for _, tx := range s.transactions {
		if tx.Status == status {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *MemoryTransactionStore) GetByPlan(_ context.Context, planID string) ([]models.PaymentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PaymentTransaction
	for _, tx := range s.transactions {
		if tx.PlanID == planID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *MemoryTransactionStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for _, tx := range s.transactions {
		if tx.Status == models.TransactionStatusPending && tx.ExpiresAt.Before(now) {
			tx.Status = models.TransactionStatusExpired
			cleaned++
		}
	}
	return cleaned, nil
}

// applyTransactionUpdate merges the partial update. Shared with the redis
// backend so both enforce the same status rules.
func applyTransactionUpdate(tx *models.PaymentTransaction, upd models.TransactionUpdate) {
	if upd.Status != nil {
		// PAID is terminal: a later webhook or poll reconciliation never
		// downgrades it.
		if tx.Status != models.TransactionStatusPaid {
			tx.Status = *upd.Status
		}
	}
	if upd.PaidAt != nil {
		tx.PaidAt = upd.PaidAt
	}
}
