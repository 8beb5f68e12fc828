package services

import (
	"context"
	"time"

	"membership_backend/internal/auth"
	"membership_backend/internal/config"
	"membership_backend/internal/logger"
	"membership_backend/internal/models"
	"membership_backend/internal/store"
	"membership_backend/pkg/apperrors"
)

// Membership is a verified session as seen by protected endpoints.
type Membership struct {
	TransactionID string     `json:"transactionId"`
	PlanID        string     `json:"planId"`
	PaidAt        string     `json:"paidAt"`
	SessionID     string     `json:"sessionId"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// SessionService verifies, extends and closes membership sessions. The
// JWT signature is the source of truth for access: a missing store record
// (memory backend restarted) does not invalidate a valid token, but a
// record explicitly flagged inactive does.
type SessionService struct {
	cfg      *config.Config
	sessions store.SessionStore
}

func NewSessionService(cfg *config.Config, sessions store.SessionStore) *SessionService {
	return &SessionService{cfg: cfg, sessions: sessions}
}

// Verify checks the token and the session record behind it.
func (s *SessionService) Verify(ctx context.Context, token string) (*Membership, error) {
	if token == "" {
		return nil, apperrors.ErrNoSession
	}

	claims, err := auth.ParseSessionToken([]byte(s.cfg.JWT.Secret), token)
	if err != nil {
		return nil, apperrors.ErrSessionTokenInvalid
	}

	membership := &Membership{
		TransactionID: claims.TransactionID,
		PlanID:        claims.PlanID,
		PaidAt:        claims.PaidAt,
		SessionID:     claims.SessionID,
	}

	record, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		// The signed token still vouches for the membership.
		logger.CtxWithError(ctx, "session store read failed during verify", err,
			"session_id", claims.SessionID,
		)
		return membership, nil
	}
	if record != nil {
		if !record.IsActive {
			return nil, apperrors.ErrSessionTokenInvalid
		}
		membership.ExpiresAt = &record.ExpiresAt
	}
	return membership, nil
}

// Logout deactivates the session behind the token. Best-effort and
// idempotent: an invalid token, a missing record or a store failure is
// not an error, the caller clears the cookie regardless.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := auth.ParseSessionToken([]byte(s.cfg.JWT.Secret), token)
	if err != nil {
		return nil
	}
	if _, err := s.sessions.Deactivate(ctx, claims.SessionID); err != nil {
		logger.CtxWithError(ctx, "session store deactivate failed during logout", err,
			"session_id", claims.SessionID,
		)
		return nil
	}
	logger.CtxInfo(ctx, "session closed", "session_id", claims.SessionID)
	return nil
}

// Extend re-signs the token for another full membership period and pushes
// the store record's expiry out to match.
func (s *SessionService) Extend(ctx context.Context, token string) (string, *Membership, time.Duration, error) {
	membership, err := s.Verify(ctx, token)
	if err != nil {
		return "", nil, 0, err
	}

	validFor := time.Duration(s.cfg.JWT.SessionDays) * 24 * time.Hour
	fresh, err := auth.GenerateSessionToken(
		[]byte(s.cfg.JWT.Secret),
		membership.TransactionID,
		membership.PlanID,
		membership.PaidAt,
		membership.SessionID,
		validFor,
	)
	if err != nil {
		return "", nil, 0, apperrors.InternalError(err)
	}

	record, err := s.sessions.Extend(ctx, membership.SessionID, s.cfg.JWT.SessionDays)
	if err != nil {
		return "", nil, 0, apperrors.InternalError(err)
	}
	if record != nil {
		membership.ExpiresAt = &record.ExpiresAt
	}
	return fresh, membership, validFor, nil
}

// Stats exposes aggregate session numbers for the admin surface.
func (s *SessionService) Stats(ctx context.Context) (models.SessionStats, error) {
	stats, err := s.sessions.Stats(ctx)
	if err != nil {
		return models.SessionStats{}, apperrors.InternalError(err)
	}
	return stats, nil
}
