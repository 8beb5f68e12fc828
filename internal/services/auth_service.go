package services

import (
	"context"
	"strings"

	"membership_backend/internal/auth"
	"membership_backend/internal/logger"
	"membership_backend/internal/repositories"
	"membership_backend/pkg/apperrors"
)

// SignupRequest captures credentials before the payment confirms.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService records signup credentials as pending until a payment with
// the same email confirms, at which point PaymentService promotes them.
type AuthService struct {
	credentials repositories.CredentialRepository
}

func NewAuthService(credentials repositories.CredentialRepository) *AuthService {
	return &AuthService{credentials: credentials}
}

// Signup stores a pending credential. Repeated signups for the same
// email overwrite the stored hash.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) error {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.credentials.UpsertPending(ctx, email, hash); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "pending credentials recorded", "email", email)
	return nil
}

// IsApproved reports whether the email has a confirmed membership
// credential.
func (s *AuthService) IsApproved(ctx context.Context, email string) (bool, error) {
	approved, err := s.credentials.IsApproved(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, apperrors.InternalError(err)
	}
	return approved, nil
}
