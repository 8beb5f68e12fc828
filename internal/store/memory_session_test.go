package store

import (
	"context"
	"testing"
	"time"

	"membership_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func newActiveSession(id, transactionID string, expiresIn time.Duration) *models.UserSession {
	now := time.Now()
	return &models.UserSession{
		SessionID:     id,
		TransactionID: transactionID,
		PlanID:        "monthly",
		CreatedAt:     now,
		LastAccessAt:  now,
		ExpiresAt:     now.Add(expiresIn),
		IsActive:      true,
	}
}

func TestMemorySessionStore_GetTouchesLastAccess(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	session := newActiveSession("sess_1", "tx_1", time.Hour)
	session.LastAccessAt = time.Now().Add(-time.Minute)
	assert.NoError(t, s.Create(ctx, session))

	got, err := s.Get(ctx, "sess_1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.True(t, got.LastAccessAt.After(session.LastAccessAt))
}

func TestMemorySessionStore_GetDeletesExpired(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newActiveSession("sess_old", "tx_1", -time.Minute)))

	got, err := s.Get(ctx, "sess_old")
	assert.NoError(t, err)
	assert.Nil(t, got)

	// Gone for good, not just hidden.
	again, err := s.Lookup(ctx, "sess_old")
	assert.NoError(t, err)
	assert.Nil(t, again)
}

func TestMemorySessionStore_LookupIsPure(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	session := newActiveSession("sess_1", "tx_1", time.Hour)
	lastAccess := time.Now().Add(-time.Minute)
	session.LastAccessAt = lastAccess
	assert.NoError(t, s.Create(ctx, session))

	got, err := s.Lookup(ctx, "sess_1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, lastAccess.Unix(), got.LastAccessAt.Unix())

	// An expired session survives Lookup.
	assert.NoError(t, s.Create(ctx, newActiveSession("sess_old", "tx_2", -time.Minute)))
	expired, err := s.Lookup(ctx, "sess_old")
	assert.NoError(t, err)
	assert.NotNil(t, expired)
}

func TestMemorySessionStore_DeactivateIdempotent(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newActiveSession("sess_1", "tx_1", time.Hour)))

	existed, err := s.Deactivate(ctx, "sess_1")
	assert.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Deactivate(ctx, "sess_1")
	assert.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Deactivate(ctx, "sess_missing")
	assert.NoError(t, err)
	assert.False(t, existed)

	got, _ := s.Lookup(ctx, "sess_1")
	assert.False(t, got.IsActive)
}

func TestMemorySessionStore_GetByTransaction(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	inactive := newActiveSession("sess_off", "tx_1", time.Hour)
	inactive.IsActive = false
	assert.NoError(t, s.Create(ctx, inactive))
	assert.NoError(t, s.Create(ctx, newActiveSession("sess_on", "tx_1", time.Hour)))

	got, err := s.GetByTransaction(ctx, "tx_1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "sess_on", got.SessionID)

	none, err := s.GetByTransaction(ctx, "tx_other")
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestMemorySessionStore_CleanupExpired(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newActiveSession("sess_old", "tx_1", -time.Minute)))
	inactiveOld := newActiveSession("sess_old_off", "tx_2", -time.Minute)
	inactiveOld.IsActive = false
	assert.NoError(t, s.Create(ctx, inactiveOld))
	assert.NoError(t, s.Create(ctx, newActiveSession("sess_fresh", "tx_3", time.Hour)))

	cleaned, err := s.CleanupExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, cleaned)

	fresh, _ := s.Lookup(ctx, "sess_fresh")
	assert.NotNil(t, fresh)
}

func TestMemorySessionStore_Extend(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newActiveSession("sess_1", "tx_1", time.Hour)))

	extended, err := s.Extend(ctx, "sess_1", 30)
	assert.NoError(t, err)
	assert.NotNil(t, extended)
	assert.True(t, extended.ExpiresAt.After(time.Now().AddDate(0, 0, 29)))

	missing, err := s.Extend(ctx, "sess_missing", 30)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemorySessionStore_Stats(t *testing.T) {
	t.Parallel()
	s := NewMemorySessionStore()
	ctx := context.Background()

	assert.NoError(t, s.Create(ctx, newActiveSession("sess_1", "tx_1", time.Hour)))
	quarterly := newActiveSession("sess_2", "tx_2", time.Hour)
	quarterly.PlanID = "quarterly"
	assert.NoError(t, s.Create(ctx, quarterly))
	assert.NoError(t, s.Create(ctx, newActiveSession("sess_old", "tx_3", -time.Minute)))

	stats, err := s.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.ByPlan["monthly"])
	assert.Equal(t, 1, stats.ByPlan["quarterly"])
}
