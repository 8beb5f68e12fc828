package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"membership_backend/internal/app"
	"membership_backend/internal/config"
	"membership_backend/internal/models"
	"membership_backend/internal/repositories"
	"membership_backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires the full router against in-memory backends.
type testEnv struct {
	router       *gin.Engine
	cfg          *config.Config
	transactions store.TransactionStore
	sessions     store.SessionStore
	credentials  repositories.CredentialRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.App.BaseURL = "http://localhost:4000"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.SessionDays = 30
	cfg.SyncPay.MockMode = true

	env := &testEnv{
		cfg:          cfg,
		transactions: store.NewMemoryTransactionStore(),
		sessions:     store.NewMemorySessionStore(),
		credentials:  repositories.NewMemoryCredentialRepository(),
	}
	env.router = app.SetupRouter(cfg, env.transactions, env.sessions, env.credentials)
	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		assert.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedTransaction(t *testing.T, id string, status models.TransactionStatus, expiresIn time.Duration) {
	t.Helper()
	now := time.Now()
	err := e.transactions.Create(context.Background(), &models.PaymentTransaction{
		TransactionID: id,
		PlanID:        "monthly",
		Amount:        1990,
		Status:        status,
		CreatedAt:     now,
		ExpiresAt:     now.Add(expiresIn),
		Customer:      &models.Customer{Name: "Maria", Email: "maria@example.com"},
	})
	assert.NoError(t, err)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "membership-session" {
			return c
		}
	}
	return nil
}
