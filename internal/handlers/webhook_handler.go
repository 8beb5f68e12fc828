package handlers

import (
	"net/http"
	"time"

	"membership_backend/internal/config"
	"membership_backend/internal/logger"
	"membership_backend/internal/middleware"
	"membership_backend/internal/models"
	"membership_backend/internal/provider"
	"membership_backend/internal/services"
	"membership_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives provider status pushes. Ack policy: respond
// 400 only when the transaction-identifying field is missing, 404 when
// the transaction is unknown locally, and 200 for everything else —
// including internal processing errors, which are logged and answered
// with a received/processing-error body so the provider does not retry.
type WebhookHandler struct {
	*BaseHandler
	cfg      *config.Config
	payments *services.PaymentService
}

func NewWebhookHandler(base *BaseHandler, cfg *config.Config, payments *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{BaseHandler: base, cfg: cfg, payments: payments}
}

func (h *WebhookHandler) RegisterRoutes(api *gin.RouterGroup) {
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/lirapay", h.LiraPay)
		webhooks.GET("/lirapay", h.Challenge)
		webhooks.POST("/syncpay", h.SyncPay)
		webhooks.GET("/syncpay", h.Challenge)
		webhooks.POST("/tribopay", h.TriboPay)
		webhooks.GET("/tribopay", h.Challenge)
	}
}

type liraPayWebhookPayload struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

type syncPayWebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ReferenceID     string  `json:"reference_id"`
		Status          string  `json:"status"`
		Amount          float64 `json:"amount"`
		TransactionDate string  `json:"transaction_date"`
	} `json:"data"`
}

// LiraPay handles POST /api/v1/webhooks/lirapay.
func (h *WebhookHandler) LiraPay(c *gin.Context) {
	var payload liraPayWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.CtxWithError(c.Request.Context(), "malformed lirapay webhook", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if payload.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing transaction ID"})
		return
	}

	h.process(c, services.WebhookEvent{
		TransactionID: payload.ID,
		Status:        provider.MapLiraPayStatus(payload.Status),
	})
}

// SyncPay handles POST /api/v1/webhooks/syncpay.
func (h *WebhookHandler) SyncPay(c *gin.Context) {
	var payload syncPayWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.CtxWithError(c.Request.Context(), "malformed syncpay webhook", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if payload.Data.ReferenceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID required"})
		return
	}

	event := services.WebhookEvent{
		TransactionID: payload.Data.ReferenceID,
		Status:        provider.MapSyncPayStatus(payload.Data.Status),
	}
	if payload.Data.TransactionDate != "" {
		if paidAt, err := time.Parse(time.RFC3339, payload.Data.TransactionDate); err == nil {
			event.PaidAt = &paidAt
		}
	}

	h.process(c, event)
}

type triboPayWebhookPayload struct {
	Event         string `json:"event"`
	TransactionID string `json:"transaction_id"`
	ExternalID    string `json:"external_id"`
	TxID          string `json:"txid"`
	Status        string `json:"status"`
	PaidAt        string `json:"paid_at"`
}

// transactionID resolves the identifier across the field names TriboPay
// has been seen using.
func (p triboPayWebhookPayload) transactionID() string {
	switch {
	case p.ExternalID != "":
		return p.ExternalID
	case p.TransactionID != "":
		return p.TransactionID
	default:
		return p.TxID
	}
}

// TriboPay handles POST /api/v1/webhooks/tribopay.
func (h *WebhookHandler) TriboPay(c *gin.Context) {
	var payload triboPayWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.CtxWithError(c.Request.Context(), "malformed tribopay webhook", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	transactionID := payload.transactionID()
	if transactionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction ID required"})
		return
	}

	event := services.WebhookEvent{
		TransactionID: transactionID,
		Status:        provider.MapTriboPayStatus(payload.Status),
	}
	if payload.PaidAt != "" {
		if paidAt, err := time.Parse(time.RFC3339, payload.PaidAt); err == nil {
			event.PaidAt = &paidAt
		}
	}

	h.process(c, event)
}

// Challenge handles the provider handshake.
// GET /api/v1/webhooks/syncpay
func (h *WebhookHandler) Challenge(c *gin.Context) {
	if challenge := c.Query("challenge"); challenge != "" {
		c.JSON(http.StatusOK, gin.H{"challenge": challenge})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "webhook endpoint active"})
}

func (h *WebhookHandler) process(c *gin.Context, event services.WebhookEvent) {
	ctx := c.Request.Context()
	event.DeviceInfo = &models.DeviceInfo{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	}

	logger.CtxInfo(ctx, "webhook received",
		"transaction_id", event.TransactionID,
		"status", string(event.Status),
	)

	result, err := h.payments.ProcessWebhook(ctx, event)
	if err != nil {
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) && appErr.HTTPCode == http.StatusNotFound {
			logger.CtxWarn(ctx, "webhook for unknown transaction", "transaction_id", event.TransactionID)
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		// Still ack: a transient internal failure must not trigger a
		// provider retry storm.
		logger.CtxWithError(ctx, "webhook processing failed", err, "transaction_id", event.TransactionID)
		c.JSON(http.StatusOK, gin.H{"received": true, "error": "Processing error"})
		return
	}

	if result.SessionToken != "" {
		middleware.SetSessionCookie(c, h.cfg, result.SessionToken, result.SessionMaxAge)
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "transactionId": result.TransactionID})
}
