package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("test-secret")

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := GenerateSessionToken(testSecret, "tx_1", "monthly", "2025-03-01T12:00:00Z", "sess_1", 30*24*time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseSessionToken(testSecret, token)
	assert.NoError(t, err)
	assert.Equal(t, "tx_1", claims.TransactionID)
	assert.Equal(t, "monthly", claims.PlanID)
	assert.Equal(t, "2025-03-01T12:00:00Z", claims.PaidAt)
	assert.Equal(t, "sess_1", claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := GenerateSessionToken(testSecret, "tx_1", "monthly", "", "sess_1", time.Hour)
	assert.NoError(t, err)

	claims, err := ParseSessionToken([]byte("other-secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseSessionToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := GenerateSessionToken(testSecret, "tx_1", "monthly", "", "sess_1", -time.Minute)
	assert.NoError(t, err)

	claims, err := ParseSessionToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	t.Parallel()

	claims, err := ParseSessionToken(testSecret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)

	claims, err = ParseSessionToken(testSecret, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
