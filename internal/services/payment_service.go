package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"membership_backend/internal/auth"
	"membership_backend/internal/config"
	"membership_backend/internal/email"
	"membership_backend/internal/logger"
	"membership_backend/internal/models"
	"membership_backend/internal/provider"
	"membership_backend/internal/repositories"
	"membership_backend/internal/store"
	"membership_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// Pending transactions expire 24 hours after checkout; a confirmed
// payment buys a 30-day membership session.
const (
	transactionTTL = 24 * time.Hour
)

// CheckoutRequest is the validated client request to start a PIX payment.
type CheckoutRequest struct {
	PlanID   string          `json:"planId" validate:"required"`
	Customer models.Customer `json:"customerData"`
}

// CheckoutResponse is what the checkout page needs to render the PIX code.
type CheckoutResponse struct {
	Success        bool                     `json:"success"`
	TransactionID  string                   `json:"transactionId"`
	PixCopiaECola  string                   `json:"pixCopiaECola"`
	QRCodeImageURL string                   `json:"qrcodeImageUrl"`
	ExpiresAt      time.Time                `json:"expiresAt"`
	Status         models.TransactionStatus `json:"status"`
}

// StatusResponse is the polling answer.
type StatusResponse struct {
	Status models.TransactionStatus `json:"status"`
	PaidAt *time.Time               `json:"paidAt,omitempty"`
}

// WebhookEvent is a provider push already normalized by the webhook
// handler: the provider-specific payload shape and status vocabulary are
// resolved before the event reaches the service.
type WebhookEvent struct {
	TransactionID string
	Status        models.TransactionStatus
	PaidAt        *time.Time
	DeviceInfo    *models.DeviceInfo
}

// WebhookResult carries the session token to set as a cookie when the
// event confirmed a payment.
type WebhookResult struct {
	TransactionID string
	SessionToken  string
	SessionMaxAge time.Duration
}

// PaymentService orchestrates checkout, webhook reconciliation and
// status polling across the stores and provider adapters.
type PaymentService struct {
	cfg          *config.Config
	transactions store.TransactionStore
	sessions     store.SessionStore
	credentials  repositories.CredentialRepository
	mailer       email.Provider
	providers    map[string]provider.PaymentProvider
}

func NewPaymentService(
	cfg *config.Config,
	transactions store.TransactionStore,
	sessions store.SessionStore,
	credentials repositories.CredentialRepository,
	mailer email.Provider,
	providers map[string]provider.PaymentProvider,
) *PaymentService {
	return &PaymentService{
		cfg:          cfg,
		transactions: transactions,
		sessions:     sessions,
		credentials:  credentials,
		mailer:       mailer,
		providers:    providers,
	}
}

func (s *PaymentService) providerByName(name string) (provider.PaymentProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, apperrors.NewBadRequestError("Unknown payment provider: " + name)
	}
	return p, nil
}

// CreateCheckout starts a PIX payment with the named provider and records
// the PENDING transaction.
func (s *PaymentService) CreateCheckout(ctx context.Context, providerName string, req CheckoutRequest, clientIP string) (*CheckoutResponse, error) {
	plan, ok := models.PlanByID(req.PlanID)
	if !ok {
		return nil, apperrors.ErrInvalidPlan
	}

	if providerName == "syncpay" && s.cfg.SyncPay.MockMode {
		return s.createMockCheckout(ctx, plan, req.Customer)
	}

	p, err := s.providerByName(providerName)
	if err != nil {
		return nil, err
	}

	externalID := fmt.Sprintf("trans_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	resp, err := p.CreateTransaction(ctx, provider.CreateTransactionRequest{
		ExternalID: externalID,
		Plan:       plan,
		Customer:   req.Customer,
		WebhookURL: fmt.Sprintf("%s/api/v1/webhooks/%s", s.cfg.App.BaseURL, providerName),
		ClientIP:   clientIP,
	})
	if err != nil {
		return nil, err
	}

	customer := req.Customer
	now := time.Now()
	tx := &models.PaymentTransaction{
		TransactionID:  resp.TransactionID,
		PlanID:         plan.ID,
		Amount:         plan.AmountCents,
		Status:         models.TransactionStatusPending,
		PixCopiaECola:  resp.PixCopiaECola,
		QRCodeImageURL: qrcodeURL(resp.PixCopiaECola),
		ExpiresAt:      now.Add(transactionTTL),
		CreatedAt:      now,
		Customer:       &customer,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "checkout created",
		"provider", providerName,
		"transaction_id", tx.TransactionID,
		"plan_id", plan.ID,
	)

	return &CheckoutResponse{
		Success:        true,
		TransactionID:  tx.TransactionID,
		PixCopiaECola:  tx.PixCopiaECola,
		QRCodeImageURL: tx.QRCodeImageURL,
		ExpiresAt:      tx.ExpiresAt,
		Status:         tx.Status,
	}, nil
}

// createMockCheckout issues a local development transaction without
// touching the provider. Polling recognizes the mock_ prefix and skips
// the provider as well.
func (s *PaymentService) createMockCheckout(ctx context.Context, plan models.Plan, customer models.Customer) (*CheckoutResponse, error) {
	mockID := fmt.Sprintf("mock_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	pixCode := fmt.Sprintf("00020126580014BR.GOV.BCB.PIX0136%s5204000053039865802BR6009SAO PAULO62070503***6304ABCD", mockID)

	now := time.Now()
	tx := &models.PaymentTransaction{
		TransactionID:  mockID,
		PlanID:         plan.ID,
		Amount:         plan.AmountCents,
		Status:         models.TransactionStatusPending,
		PixCopiaECola:  pixCode,
		QRCodeImageURL: qrcodeURL(pixCode),
		ExpiresAt:      now.Add(transactionTTL),
		CreatedAt:      now,
		Customer:       &customer,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "mock checkout created", "transaction_id", mockID, "plan_id", plan.ID)

	return &CheckoutResponse{
		Success:        true,
		TransactionID:  tx.TransactionID,
		PixCopiaECola:  tx.PixCopiaECola,
		QRCodeImageURL: tx.QRCodeImageURL,
		ExpiresAt:      tx.ExpiresAt,
		Status:         tx.Status,
	}, nil
}

// GetStatus reconciles one transaction for a polling client. Local
// terminal statuses answer immediately; a pending transaction past its
// expiry flips to EXPIRED without a provider call; otherwise the provider
// is queried, degrading to the last known local status when it fails.
func (s *PaymentService) GetStatus(ctx context.Context, providerName, transactionID string) (*StatusResponse, error) {
	tx, err := s.transactions.Get(ctx, transactionID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if tx == nil {
		return nil, apperrors.ErrTransactionNotFound(transactionID)
	}

	if tx.Status == models.TransactionStatusPaid || tx.Status == models.TransactionStatusExpired {
		return &StatusResponse{Status: tx.Status, PaidAt: tx.PaidAt}, nil
	}

	// Local expiry is authoritative regardless of what the provider says.
	if tx.Status == models.TransactionStatusPending && tx.ExpiresAt.Before(time.Now()) {
		expired := models.TransactionStatusExpired
		if _, err := s.transactions.Update(ctx, transactionID, models.TransactionUpdate{Status: &expired}); err != nil {
			return nil, apperrors.InternalError(err)
		}
		return &StatusResponse{Status: expired}, nil
	}

	if len(transactionID) > 5 && transactionID[:5] == "mock_" {
		return &StatusResponse{Status: tx.Status, PaidAt: tx.PaidAt}, nil
	}

	p, err := s.providerByName(providerName)
	if err != nil {
		return nil, err
	}

	remote, err := p.GetTransaction(ctx, transactionID)
	if err != nil {
		// Resilience over freshness: fall back to the last known status.
		logger.CtxWarn(ctx, "provider status poll failed, returning local status",
			"provider", providerName,
			"transaction_id", transactionID,
			"error", err.Error(),
		)
		return &StatusResponse{Status: tx.Status, PaidAt: tx.PaidAt}, nil
	}

	if remote.Status == models.TransactionStatusPaid {
		updated, err := s.confirmPayment(ctx, tx, remote.PaidAt)
		if err != nil {
			return nil, err
		}
		return &StatusResponse{Status: updated.Status, PaidAt: updated.PaidAt}, nil
	}

	if remote.Status != tx.Status {
		updated, err := s.transactions.Update(ctx, transactionID, models.TransactionUpdate{Status: &remote.Status})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if updated != nil {
			tx = updated
		}
	}

	return &StatusResponse{Status: tx.Status, PaidAt: tx.PaidAt}, nil
}

// ProcessWebhook applies one normalized provider event. The caller has
// already validated the payload; unknown transactions surface as a
// not-found error.
func (s *PaymentService) ProcessWebhook(ctx context.Context, event WebhookEvent) (*WebhookResult, error) {
	tx, err := s.transactions.Get(ctx, event.TransactionID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if tx == nil {
		return nil, apperrors.ErrTransactionNotFound(event.TransactionID)
	}

	result := &WebhookResult{TransactionID: event.TransactionID}

	switch event.Status {
	case models.TransactionStatusPaid:
		if _, err := s.confirmPayment(ctx, tx, event.PaidAt); err != nil {
			return nil, err
		}

		token, maxAge, err := s.activateMembership(ctx, tx, event.PaidAt, event.DeviceInfo)
		if err != nil {
			return nil, err
		}
		result.SessionToken = token
		result.SessionMaxAge = maxAge

	case models.TransactionStatusExpired, models.TransactionStatusCancelled:
		status := event.Status
		if _, err := s.transactions.Update(ctx, event.TransactionID, models.TransactionUpdate{Status: &status}); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.deactivateByTransaction(ctx, event.TransactionID); err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "payment closed by provider",
			"transaction_id", event.TransactionID,
			"status", string(status),
		)
	}

	return result, nil
}

// confirmPayment marks the transaction PAID and runs the best-effort
// bookkeeping shared by the webhook and polling paths. Safe to call more
// than once: the store never downgrades PAID, promotion is idempotent.
func (s *PaymentService) confirmPayment(ctx context.Context, tx *models.PaymentTransaction, providerPaidAt *time.Time) (*models.PaymentTransaction, error) {
	paidAt := time.Now()
	if providerPaidAt != nil {
		paidAt = *providerPaidAt
	}

	alreadyPaid := tx.Status == models.TransactionStatusPaid

	paid := models.TransactionStatusPaid
	upd := models.TransactionUpdate{Status: &paid}
	if !alreadyPaid {
		upd.PaidAt = &paidAt
	}
	updated, err := s.transactions.Update(ctx, tx.TransactionID, upd)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if updated == nil {
		return nil, apperrors.ErrTransactionNotFound(tx.TransactionID)
	}

	if !alreadyPaid {
		logger.CtxInfo(ctx, "payment confirmed",
			"transaction_id", tx.TransactionID,
			"plan_id", tx.PlanID,
		)
	}

	s.promoteCredentials(ctx, updated)
	if !alreadyPaid {
		s.sendReceipt(ctx, updated)
	}
	return updated, nil
}

// activateMembership creates the session record and signs the membership
// token for the cookie.
func (s *PaymentService) activateMembership(ctx context.Context, tx *models.PaymentTransaction, providerPaidAt *time.Time, device *models.DeviceInfo) (string, time.Duration, error) {
	paidAt := time.Now()
	if providerPaidAt != nil {
		paidAt = *providerPaidAt
	}

	validFor := time.Duration(s.cfg.JWT.SessionDays) * 24 * time.Hour
	now := time.Now()
	session := &models.UserSession{
		SessionID:     "sess_" + uuid.NewString(),
		TransactionID: tx.TransactionID,
		PlanID:        tx.PlanID,
		CreatedAt:     now,
		LastAccessAt:  now,
		ExpiresAt:     now.Add(validFor),
		IsActive:      true,
		DeviceInfo:    device,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", 0, apperrors.InternalError(err)
	}

	token, err := auth.GenerateSessionToken(
		[]byte(s.cfg.JWT.Secret),
		tx.TransactionID,
		tx.PlanID,
		paidAt.Format(time.RFC3339),
		session.SessionID,
		validFor,
	)
	if err != nil {
		return "", 0, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "membership session created",
		"transaction_id", tx.TransactionID,
		"session_id", session.SessionID,
	)
	return token, validFor, nil
}

func (s *PaymentService) deactivateByTransaction(ctx context.Context, transactionID string) error {
	session, err := s.sessions.GetByTransaction(ctx, transactionID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if session == nil {
		return nil
	}
	if _, err := s.sessions.Deactivate(ctx, session.SessionID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// promoteCredentials moves a matching pending signup into approved users.
// Best-effort: a credential store failure must never block a payment
// confirmation.
func (s *PaymentService) promoteCredentials(ctx context.Context, tx *models.PaymentTransaction) {
	if tx.Customer == nil || tx.Customer.Email == "" {
		return
	}

	if err := s.credentials.PromoteToApproved(ctx, tx.Customer.Email); err != nil {
		logger.CtxWithError(ctx, "credential promotion failed", err,
			"transaction_id", tx.TransactionID,
			"email", tx.Customer.Email,
		)
	}
}

// sendReceipt mails a payment confirmation. Best-effort, same as
// promotion.
func (s *PaymentService) sendReceipt(ctx context.Context, tx *models.PaymentTransaction) {
	if tx.Customer == nil || tx.Customer.Email == "" {
		return
	}

	plan, _ := models.PlanByID(tx.PlanID)
	body := fmt.Sprintf(
		"<p>Pagamento confirmado!</p><p>Plano: %s</p><p>Valor: R$ %.2f</p><p>Transação: %s</p>",
		plan.Title, float64(tx.Amount)/100, tx.TransactionID,
	)
	if err := s.mailer.Send(tx.Customer.Email, "Pagamento confirmado", body); err != nil {
		logger.CtxWithError(ctx, "receipt email failed", err,
			"transaction_id", tx.TransactionID,
		)
	}
}

func qrcodeURL(pixCode string) string {
	return "/api/v1/qrcode?code=" + url.QueryEscape(pixCode)
}
