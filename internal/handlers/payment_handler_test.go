package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"membership_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestListPlans(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/plans", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	plans := decodeBody(t, rec)["plans"].([]interface{})
	assert.Len(t, plans, 3)
	first := plans[0].(map[string]interface{})
	assert.Equal(t, "monthly", first["id"])
	assert.Equal(t, float64(1990), first["amountCents"])
}

func TestCreateCheckout_MockMode(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/payments/syncpay/checkout", map[string]interface{}{
		"planId": "monthly",
		"customerData": map[string]string{
			"name":  "Maria",
			"email": "maria@example.com",
		},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	txID := body["transactionId"].(string)
	assert.True(t, strings.HasPrefix(txID, "mock_"))
	assert.NotEmpty(t, body["pixCopiaECola"])

	tx, _ := env.transactions.Get(context.Background(), txID)
	assert.NotNil(t, tx)
	assert.Equal(t, models.TransactionStatusPending, tx.Status)
}

func TestCreateCheckout_MissingPlan(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/payments/syncpay/checkout", map[string]interface{}{
		"customerData": map[string]string{"email": "maria@example.com"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatus_ExpiredPendingFlipsLocally(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedTransaction(t, "tx_2", models.TransactionStatusPending, -time.Minute)

	rec := env.request(t, http.MethodGet, "/api/v1/payments/lirapay/status/tx_2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EXPIRED", decodeBody(t, rec)["status"])

	tx, _ := env.transactions.Get(ctx, "tx_2")
	assert.Equal(t, models.TransactionStatusExpired, tx.Status)
}

func TestGetStatus_UnknownTransaction(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/payments/lirapay/status/tx_ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQRCode(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	code := url.QueryEscape("00020126580014BR.GOV.BCB.PIX0136abc")
	rec := env.request(t, http.MethodGet, "/api/v1/qrcode?code="+code, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = env.request(t, http.MethodGet, "/api/v1/qrcode", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
