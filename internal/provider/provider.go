package provider

import (
	"context"
	"net/http"
	"time"

	"membership_backend/internal/models"
)

// CreateTransactionRequest is the provider-independent checkout request.
// ExternalID is our locally generated correlation id; providers that
// assign their own transaction id return it in the response.
type CreateTransactionRequest struct {
	ExternalID string
	Plan       models.Plan
	Customer   models.Customer
	WebhookURL string
	ClientIP   string
}

// CreateTransactionResponse is the normalized provider answer to a
// checkout request.
type CreateTransactionResponse struct {
	TransactionID string
	PixCopiaECola string
	Status        models.TransactionStatus
}

// TransactionStatusResponse is the normalized answer to a status poll.
type TransactionStatusResponse struct {
	Status models.TransactionStatus
	PaidAt *time.Time
}

// PaymentProvider hides one PIX provider's HTTP contract. Non-2xx
// responses surface as provider errors (status code plus body), network
// failures as transport errors; neither is swallowed.
type PaymentProvider interface {
	Name() string
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResponse, error)
	GetTransaction(ctx context.Context, transactionID string) (*TransactionStatusResponse, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// centsToReais converts the stored integer amount to the decimal value
// both providers bill in.
func centsToReais(cents int64) float64 {
	return float64(cents) / 100
}
