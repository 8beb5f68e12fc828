package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"membership_backend/internal/logger"
	"membership_backend/internal/models"
	"membership_backend/pkg/apperrors"
)

// LiraPay statuses and their internal mapping. Anything not listed maps
// to PENDING.
const (
	liraPayStatusAuthorized = "AUTHORIZED"
	liraPayStatusFailed     = "FAILED"
	liraPayStatusChargeback = "CHARGEBACK"
)

// LiraPayProvider talks to the LiraPay PIX API. Authentication is a
// static api-secret header, no token dance.
type LiraPayProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewLiraPayProvider(apiKey, baseURL string) *LiraPayProvider {
	return &LiraPayProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func (p *LiraPayProvider) Name() string { return "lirapay" }

type liraPayCustomer struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	DocumentType string `json:"document_type"`
	Document     string `json:"document"`
}

type liraPayItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	IsPhysical  bool    `json:"is_physical"`
}

type liraPayCreateRequest struct {
	ExternalID    string          `json:"external_id"`
	TotalAmount   float64         `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	WebhookURL    string          `json:"webhook_url"`
	Items         []liraPayItem   `json:"items"`
	IP            string          `json:"ip"`
	Customer      liraPayCustomer `json:"customer"`
}

type liraPayTransaction struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Pix        *struct {
		Payload string `json:"payload"`
	} `json:"pix"`
	PaidAt string `json:"paid_at"`
}

func (p *LiraPayProvider) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*CreateTransactionResponse, error) {
	amount := centsToReais(req.Plan.AmountCents)
	payload := liraPayCreateRequest{
		ExternalID:    req.ExternalID,
		TotalAmount:   amount,
		PaymentMethod: "PIX",
		WebhookURL:    req.WebhookURL,
		Items: []liraPayItem{{
			ID:          req.Plan.ID,
			Title:       req.Plan.Title,
			Description: req.Plan.Description,
			Price:       amount,
			Quantity:    1,
			IsPhysical:  false,
		}},
		IP: req.ClientIP,
		Customer: liraPayCustomer{
			Name:         req.Customer.Name,
			Email:        req.Customer.Email,
			Phone:        stripNonDigits(req.Customer.Phone),
			DocumentType: "CPF",
			Document:     stripNonDigits(req.Customer.Document),
		},
	}

	var tx liraPayTransaction
	if err := p.do(ctx, http.MethodPost, "/transactions", payload, &tx); err != nil {
		return nil, err
	}

	resp := &CreateTransactionResponse{
		TransactionID: tx.ID,
		Status:        MapLiraPayStatus(tx.Status),
	}
	if tx.Pix != nil {
		resp.PixCopiaECola = tx.Pix.Payload
	}
	return resp, nil
}

func (p *LiraPayProvider) GetTransaction(ctx context.Context, transactionID string) (*TransactionStatusResponse, error) {
	var tx liraPayTransaction
	if err := p.do(ctx, http.MethodGet, "/transactions/"+transactionID, nil, &tx); err != nil {
		return nil, err
	}

	resp := &TransactionStatusResponse{Status: MapLiraPayStatus(tx.Status)}
	if resp.Status == models.TransactionStatusPaid && tx.PaidAt != "" {
		if paidAt, err := time.Parse(time.RFC3339, tx.PaidAt); err == nil {
			resp.PaidAt = &paidAt
		}
	}
	return resp, nil
}

func (p *LiraPayProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	start := time.Now()
	err := p.doRequest(ctx, method, path, body, out)
	logger.ProviderLog(p.Name(), fmt.Sprintf("%s %s", method, path), time.Since(start), err)
	return err
}

func (p *LiraPayProvider) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
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
	req.Header.Set("api-secret", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

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

// MapLiraPayStatus maps the provider vocabulary onto the internal enum.
// The mapping is total: unknown statuses stay PENDING.
func MapLiraPayStatus(status string) models.TransactionStatus {
	switch status {
	case liraPayStatusAuthorized:
		return models.TransactionStatusPaid
	case liraPayStatusFailed, liraPayStatusChargeback:
		return models.TransactionStatusCancelled
	default:
		return models.TransactionStatusPending
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
