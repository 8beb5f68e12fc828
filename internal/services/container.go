package services

import "membership_backend/internal/email"

// ServiceContainer holds every service of the application.
type ServiceContainer struct {
	PaymentService *PaymentService
	SessionService *SessionService
	AuthService    *AuthService
	EmailService   email.Provider
}
