package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by the membership cookie. The
// signed token is the client's only credential; the session store holds
// the matching server-side record.
type SessionClaims struct {
	TransactionID string `json:"transactionId"`
	PlanID        string `json:"planId"`
	PaidAt        string `json:"paidAt"`
	SessionID     string `json:"sessionId"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid or expired session token")

// GenerateSessionToken signs a membership token valid for the given
// duration.
func GenerateSessionToken(secret []byte, transactionID, planID, paidAt, sessionID string, validFor time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		TransactionID: transactionID,
		PlanID:        planID,
		PaidAt:        paidAt,
		SessionID:     sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validFor)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken verifies the signature and expiry of a membership
// token. Any failure yields ErrInvalidToken: verification fails closed.
func ParseSessionToken(secret []byte, tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
