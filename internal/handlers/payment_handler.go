package handlers

import (
	"net/http"

	"membership_backend/internal/models"
	"membership_backend/internal/services"
	"membership_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// PaymentHandler serves checkout creation, status polling and the PIX
// QR-code image.
type PaymentHandler struct {
	*BaseHandler
	payments *services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, payments: payments}
}

func (h *PaymentHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/plans", h.ListPlans)
	api.GET("/qrcode", h.QRCode)

	payments := api.Group("/payments")
	{
		payments.POST("/:provider/checkout", h.CreateCheckout)
		payments.GET("/:provider/status/:id", h.GetStatus)
	}
}

// ListPlans returns the fixed plan catalog.
// GET /api/v1/plans
func (h *PaymentHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": models.Plans()})
}

// CreateCheckout starts a PIX payment with the provider named in the path.
// POST /api/v1/payments/:provider/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req services.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.payments.CreateCheckout(c.Request.Context(), c.Param("provider"), req, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatus answers one polling round for a transaction.
// GET /api/v1/payments/:provider/status/:id
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	transactionID := c.Param("id")
	if transactionID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Transaction ID is required"))
		return
	}

	resp, err := h.payments.GetStatus(c.Request.Context(), c.Param("provider"), transactionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// QRCode renders a PIX copia-e-cola code as a PNG.
// GET /api/v1/qrcode?code=...
func (h *PaymentHandler) QRCode(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("PIX code is required"))
		return
	}

	png, err := qrcode.Encode(code, qrcode.Medium, 300)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
