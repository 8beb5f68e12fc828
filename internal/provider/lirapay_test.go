package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"membership_backend/internal/models"
	"membership_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestLiraPayProvider_CreateTransaction(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("api-secret"))

		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "PIX", payload["payment_method"])
		assert.Equal(t, 19.90, payload["total_amount"])
		customer := payload["customer"].(map[string]interface{})
		assert.Equal(t, "12345678901", customer["document"])
		assert.Equal(t, "CPF", customer["document_type"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "lp_123",
			"status": "PENDING",
			"pix":    map[string]string{"payload": "00020126pix"},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewLiraPayProvider("secret-key", srv.URL)
	plan, _ := models.PlanByID("monthly")
	resp, err := p.CreateTransaction(context.Background(), CreateTransactionRequest{
		ExternalID: "trans_1",
		Plan:       plan,
		Customer: models.Customer{
			Name:     "Maria",
			Email:    "maria@example.com",
			Phone:    "+55 (11) 99999-8888",
			Document: "123.456.789-01",
		},
		ClientIP: "203.0.113.9",
	})
	assert.NoError(t, err)
	assert.Equal(t, "lp_123", resp.TransactionID)
	assert.Equal(t, "00020126pix", resp.PixCopiaECola)
	assert.Equal(t, models.TransactionStatusPending, resp.Status)
}

func TestLiraPayProvider_GetTransactionPaid(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/lp_123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"id":      "lp_123",
			"status":  "AUTHORIZED",
			"paid_at": "2025-03-01T12:00:00Z",
		})
	}))
	t.Cleanup(srv.Close)

	p := NewLiraPayProvider("secret-key", srv.URL)
	resp, err := p.GetTransaction(context.Background(), "lp_123")
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPaid, resp.Status)
	assert.NotNil(t, resp.PaidAt)
}

func TestLiraPayProvider_ProviderError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p := NewLiraPayProvider("wrong-key", srv.URL)
	_, err := p.GetTransaction(context.Background(), "lp_123")
	assert.Error(t, err)

	var appErr *apperrors.AppError
	assert.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPCode)
}

func TestLiraPayProvider_TransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refused connection

	p := NewLiraPayProvider("secret-key", srv.URL)
	_, err := p.GetTransaction(context.Background(), "lp_123")
	assert.Error(t, err)

	var appErr *apperrors.AppError
	assert.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeTransportError, appErr.Code)
}
