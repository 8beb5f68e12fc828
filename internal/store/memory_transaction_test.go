package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"membership_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func newPendingTransaction(id string, expiresIn time.Duration) *models.PaymentTransaction {
	now := time.Now()
	return &models.PaymentTransaction{
		TransactionID: id,
		PlanID:        "monthly",
		Amount:        1990,
		Status:        models.TransactionStatusPending,
		PixCopiaECola: "00020126pixcode",
		CreatedAt:     now,
		ExpiresAt:     now.Add(expiresIn),
	}
}

func TestMemoryTransactionStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	s := NewMemoryTransactionStore()
	ctx := context.Background()

	err := s.Create(ctx, newPendingTransaction("tx_1", time.Hour))
	assert.NoError(t, err)

	tx, err := s.Get(ctx, "tx_1")
	assert.NoError(t, err)
	assert.NotNil(t, tx)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
	assert.Equal(t, int64(1990), tx.Amount)

	missing, err := s.Get(ctx, "tx_missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryTransactionStore_PaidNeverRegresses(t *testing.T) {
	t.Parallel()
	s := NewMemoryTransactionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newPendingTransaction("tx_1", time.Hour)))

	paid := models.TransactionStatusPaid
	paidAt := time.Now()
	updated, err := s.Update(ctx, "tx_1", models.TransactionUpdate{Status: &paid, PaidAt: &paidAt})
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPaid, updated.Status)

	for _, late := range []models.TransactionStatus{
		models.TransactionStatusPending,
		models.TransactionStatusExpired,
		models.TransactionStatusCancelled,
	} {
		status := late
		updated, err = s.Update(ctx, "tx_1", models.TransactionUpdate{Status: &status})
		assert.NoError(t, err)
		assert.Equal(t, models.TransactionStatusPaid, updated.Status, "status %s must not replace PAID", late)
	}
}

func TestMemoryTransactionStore_UpdateMissing(t *testing.T) {
	t.Parallel()
	s := NewMemoryTransactionStore()

	paid := models.TransactionStatusPaid
	updated, err := s.Update(context.Background(), "tx_ghost", models.TransactionUpdate{Status: &paid})
	assert.NoError(t, err)
	assert.Nil(t, updated)
}

func TestMemoryTransactionStore_CleanupExpired(t *testing.T) {
	t.Parallel()
	s := NewMemoryTransactionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newPendingTransaction("tx_stale", -time.Minute)))
	assert.NoError(t, s.Create(ctx, newPendingTransaction("tx_fresh", time.Hour)))

	paidTx := newPendingTransaction("tx_paid", -time.Minute)
	paidTx.Status = models.TransactionStatusPaid
	assert.NoError(t, s.Create(ctx, paidTx))

	cleaned, err := s.CleanupExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, cleaned)

	stale, _ := s.Get(ctx, "tx_stale")
	assert.Equal(t, models.TransactionStatusExpired, stale.Status)

	fresh, _ := s.Get(ctx, "tx_fresh")
	assert.Equal(t, models.TransactionStatusPending, fresh.Status)

	// PAID records past their expiry are untouched.
	paidAfter, _ := s.Get(ctx, "tx_paid")
	assert.Equal(t, models.TransactionStatusPaid, paidAfter.Status)
}

func TestMemoryTransactionStore_Filters(t *testing.T) {
	t.Parallel()
	s := NewMemoryTransactionStore()
	ctx := context.Background()

	a := newPendingTransaction("tx_a", time.Hour)
	b := newPendingTransaction("tx_b", time.Hour)
	b.PlanID = "quarterly"
	b.Status = models.TransactionStatusPaid
	assert.NoError(t, s.Create(ctx, a))
	assert.NoError(t, s.Create(ctx, b))

	all, err := s.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := s.GetByStatus(ctx, models.TransactionStatusPending)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, "tx_a", pending[0].TransactionID)

	quarterly, err := s.GetByPlan(ctx, "quarterly")
	assert.NoError(t, err)
	assert.Len(t, quarterly, 1)
	assert.Equal(t, "tx_b", quarterly[0].TransactionID)
}

func TestMemoryTransactionStore_ConcurrentPaidWins(t *testing.T) {
	t.Parallel()
	s := NewMemoryTransactionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newPendingTransaction("tx_race", time.Hour)))

	paid := models.TransactionStatusPaid
	_, err := s.Update(ctx, "tx_race", models.TransactionUpdate{Status: &paid})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancelled := models.TransactionStatusCancelled
			_, _ = s.Update(ctx, "tx_race", models.TransactionUpdate{Status: &cancelled})
		}()
	}
	wg.Wait()

	tx, _ := s.Get(ctx, "tx_race")
	assert.Equal(t, models.TransactionStatusPaid, tx.Status)
}
