package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"membership_backend/internal/auth"
	"membership_backend/internal/models"
	"membership_backend/internal/store"

	"github.com/stretchr/testify/assert"
)

func newSessionFixture(t *testing.T) (*SessionService, store.SessionStore) {
	t.Helper()
	sessions := store.NewMemorySessionStore()
	return NewSessionService(testConfig(), sessions), sessions
}

func signedToken(t *testing.T, sessionID string, validFor time.Duration) string {
	t.Helper()
	token, err := auth.GenerateSessionToken([]byte("test-secret"), "tx_1", "monthly", "2025-03-01T12:00:00Z", sessionID, validFor)
	assert.NoError(t, err)
	return token
}

func seedSession(t *testing.T, sessions store.SessionStore, sessionID string, active bool) {
	t.Helper()
	assert.NoError(t, sessions.Create(context.Background(), &models.UserSession{
		SessionID:     sessionID,
		TransactionID: "tx_1",
		PlanID:        "monthly",
		CreatedAt:     time.Now(),
		LastAccessAt:  time.Now(),
		ExpiresAt:     time.Now().Add(time.Hour),
		IsActive:      active,
	}))
}

func TestSessionService_Verify(t *testing.T) {
	t.Parallel()
	svc, sessions := newSessionFixture(t)
	seedSession(t, sessions, "sess_1", true)

	membership, err := svc.Verify(context.Background(), signedToken(t, "sess_1", time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, "tx_1", membership.TransactionID)
	assert.Equal(t, "monthly", membership.PlanID)
	assert.Equal(t, "sess_1", membership.SessionID)
	assert.NotNil(t, membership.ExpiresAt)
}

func TestSessionService_VerifyEmptyToken(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture(t)

	_, err := svc.Verify(context.Background(), "")
	assert.Error(t, err)
}

func TestSessionService_VerifyBadToken(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture(t)

	_, err := svc.Verify(context.Background(), "garbage")
	assert.Error(t, err)

	_, err = svc.Verify(context.Background(), signedToken(t, "sess_1", -time.Minute))
	assert.Error(t, err)
}

func TestSessionService_VerifyMissingRecordStillValid(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture(t)

	// The signed token is the authority; a store restart must not log
	// members out.
	membership, err := svc.Verify(context.Background(), signedToken(t, "sess_gone", time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, "sess_gone", membership.SessionID)
	assert.Nil(t, membership.ExpiresAt)
}

func TestSessionService_VerifyDeactivatedRecordFails(t *testing.T) {
	t.Parallel()
	svc, sessions := newSessionFixture(t)
	seedSession(t, sessions, "sess_1", false)

	_, err := svc.Verify(context.Background(), signedToken(t, "sess_1", time.Hour))
	assert.Error(t, err)
}

func TestSessionService_LogoutIdempotent(t *testing.T) {
	t.Parallel()
	svc, sessions := newSessionFixture(t)
	seedSession(t, sessions, "sess_1", true)
	token := signedToken(t, "sess_1", time.Hour)
	ctx := context.Background()

	assert.NoError(t, svc.Logout(ctx, token))
	record, _ := sessions.Lookup(ctx, "sess_1")
	assert.False(t, record.IsActive)

	// Second logout, missing token and garbage token all succeed.
	assert.NoError(t, svc.Logout(ctx, token))
	assert.NoError(t, svc.Logout(ctx, ""))
	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

// failingDeactivateStore fails Deactivate and delegates the rest.
type failingDeactivateStore struct {
	store.SessionStore
	err error
}

func (s *failingDeactivateStore) Deactivate(context.Context, string) (bool, error) {
	return false, s.err
}

func TestSessionService_LogoutSwallowsStoreFailure(t *testing.T) {
	t.Parallel()
	backend := &failingDeactivateStore{
		SessionStore: store.NewMemorySessionStore(),
		err:          errors.New("redis: connection refused"),
	}
	svc := NewSessionService(testConfig(), backend)

	// Logout is best-effort: the caller clears the cookie either way, so
	// a store outage must not surface as an error.
	assert.NoError(t, svc.Logout(context.Background(), signedToken(t, "sess_1", time.Hour)))
}

func TestSessionService_Extend(t *testing.T) {
	t.Parallel()
	svc, sessions := newSessionFixture(t)
	seedSession(t, sessions, "sess_1", true)
	ctx := context.Background()

	fresh, membership, maxAge, err := svc.Extend(ctx, signedToken(t, "sess_1", time.Hour))
	assert.NoError(t, err)
	assert.NotEmpty(t, fresh)
	assert.Equal(t, 30*24*time.Hour, maxAge)
	assert.NotNil(t, membership.ExpiresAt)

	claims, err := auth.ParseSessionToken([]byte("test-secret"), fresh)
	assert.NoError(t, err)
	assert.Equal(t, "sess_1", claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	record, _ := sessions.Lookup(ctx, "sess_1")
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), record.ExpiresAt, time.Minute)
}

func TestSessionService_ExtendInvalidToken(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture(t)

	_, _, _, err := svc.Extend(context.Background(), "garbage")
	assert.Error(t, err)
}
