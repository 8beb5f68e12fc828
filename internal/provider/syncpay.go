package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"membership_backend/internal/logger"
	"membership_backend/internal/models"
	"membership_backend/pkg/apperrors"
)

// SyncPay statuses and their internal mapping. Anything not listed maps
// to PENDING.
const (
	syncPayStatusCompleted = "completed"
	syncPayStatusExpired   = "expired"
	syncPayStatusCancelled = "cancelled"
)

// The provider issues tokens valid for an hour; cache for 55 minutes so a
// token is always refreshed inside the safety margin.
const syncPayTokenCacheTTL = 55 * time.Minute

// SyncPayProvider talks to the SyncPay PIX API. Every call carries a
// bearer token acquired from the partner auth endpoint and cached
// in-memory until close to its expiry.
type SyncPayProvider struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       *http.Client

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

func NewSyncPayProvider(clientID, clientSecret, baseURL string) *SyncPayProvider {
	return &SyncPayProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       newHTTPClient(),
	}
}

func (p *SyncPayProvider) Name() string { return "syncpay" }

type syncPayAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type syncPayClient struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type syncPayCashInRequest struct {
	Amount      float64       `json:"amount"`
	Description string        `json:"description"`
	Client      syncPayClient `json:"client"`
	WebhookURL  string        `json:"webhook_url,omitempty"`
	ReferenceID string        `json:"reference_id,omitempty"`
}

type syncPayCashInResponse struct {
	Identifier string `json:"identifier"`
	PixCode    string `json:"pix_code"`
	Status     string `json:"status"`
}

type syncPayTransaction struct {
	Status          string `json:"status"`
	TransactionDate string `json:"transaction_date"`
}

type syncPayTransactionEnvelope struct {
	Data *syncPayTransaction `json:"data"`
	syncPayTransaction
}

// GetAuthToken returns a valid bearer token, reusing the cached one while
// it is still inside its lifetime margin.
func (p *SyncPayProvider) GetAuthToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.cachedToken, nil
	}

	payload := map[string]string{
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/partner/v1/auth-token", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperrors.ErrTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.ErrTransport(p.Name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.ErrProvider(p.Name(), resp.StatusCode, string(body))
	}

	var auth syncPayAuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", apperrors.ErrProvider(p.Name(), resp.StatusCode, string(body))
	}

	p.cachedToken = auth.AccessToken
	p.tokenExpiry = time.Now().Add(syncPayTokenCacheTTL)
	return p.cachedToken, nil
}

func (p *SyncPayProvider) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResponse, error) {
	payload := syncPayCashInRequest{
		Amount:      centsToReais(req.Plan.AmountCents),
		Description: req.Plan.Description,
		Client: syncPayClient{
			Name:  req.Customer.Name,
			CPF:   stripNonDigits(req.Customer.Document),
			Email: req.Customer.Email,
			Phone: stripNonDigits(req.Customer.Phone),
		},
		WebhookURL:  req.WebhookURL,
		ReferenceID: req.ExternalID,
	}

	var cashIn syncPayCashInResponse
	if err := p.do(ctx, http.MethodPost, "/api/partner/v1/cash-in", payload, &cashIn); err != nil {
		return nil, err
	}

	if cashIn.Identifier == "" || cashIn.PixCode == "" {
		return nil, apperrors.ErrProvider(p.Name(), http.StatusOK, "cash-in response missing identifier or pix_code")
	}

	return &CreateTransactionResponse{
		TransactionID: cashIn.Identifier,
		PixCopiaECola: cashIn.PixCode,
		Status:        models.TransactionStatusPending,
	}, nil
}

func (p *SyncPayProvider) GetTransaction(ctx context.Context, transactionID string) (*TransactionStatusResponse, error) {
	var envelope syncPayTransactionEnvelope
	if err := p.do(ctx, http.MethodGet, "/api/partner/v1/transaction/"+transactionID, nil, &envelope); err != nil {
		return nil, err
	}

	// Some endpoints wrap the record under "data", some return it flat.
	tx := envelope.syncPayTransaction
	if envelope.Data != nil {
		tx = *envelope.Data
	}

	resp := &TransactionStatusResponse{Status: MapSyncPayStatus(tx.Status)}
	if resp.Status == models.TransactionStatusPaid && tx.TransactionDate != "" {
		if paidAt, err := time.Parse(time.RFC3339, tx.TransactionDate); err == nil {
			resp.PaidAt = &paidAt
		}
	}
	return resp, nil
}

func (p *SyncPayProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	start := time.Now()
	err := p.doRequest(ctx, method, path, body, out)
	logger.ProviderLog(p.Name(), fmt.Sprintf("%s %s", method, path), time.Since(start), err)
	return err
}

func (p *SyncPayProvider) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := p.GetAuthToken(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.ErrTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.ErrTransport(p.Name(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.ErrProvider(p.Name(), resp.StatusCode, string(data))
	}

	return json.Unmarshal(data, out)
}

// MapSyncPayStatus maps the provider vocabulary onto the internal enum.
// The mapping is total: unknown statuses stay PENDING.
func MapSyncPayStatus(status string) models.TransactionStatus {
	switch status {
	case syncPayStatusCompleted:
		return models.TransactionStatusPaid
	case syncPayStatusExpired:
		return models.TransactionStatusExpired
	case syncPayStatusCancelled:
		return models.TransactionStatusCancelled
	default:
		return models.TransactionStatusPending
	}
}
