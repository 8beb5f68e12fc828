package handlers

import (
	"net/http"
	"sort"

	"membership_backend/internal/models"
	"membership_backend/internal/store"
	"membership_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes operational introspection over the stores. It
// talks to the stores directly: these endpoints are read-mostly plumbing
// with no business rules worth a service layer.
type AdminHandler struct {
	*BaseHandler
	transactions store.TransactionStore
	sessions     store.SessionStore
}

func NewAdminHandler(base *BaseHandler, transactions store.TransactionStore, sessions store.SessionStore) *AdminHandler {
	return &AdminHandler{BaseHandler: base, transactions: transactions, sessions: sessions}
}

func (h *AdminHandler) RegisterRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	{
		admin.GET("/sessions", h.ListSessions)
		admin.POST("/sessions/cleanup", h.CleanupSessions)
		admin.DELETE("/sessions", h.DeactivateSession)
		admin.GET("/transactions", h.ListTransactions)
		admin.POST("/transactions/cleanup", h.CleanupTransactions)
	}
}

// ListSessions returns sessions (most recently accessed first), stats and
// the count swept by the piggybacked cleanup.
// GET /api/v1/admin/sessions?limit=50
func (h *AdminHandler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()

	sessions, err := h.sessions.GetActiveSessions(ctx)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastAccessAt.After(sessions[j].LastAccessAt)
	})
	if limit := ParseQueryInt(c, "limit", 0); limit > 0 && limit < len(sessions) {
		sessions = sessions[:limit]
	}

	cleaned, err := h.sessions.CleanupExpired(ctx)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	stats, err := h.sessions.Stats(ctx)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":       sessions,
		"stats":          stats,
		"cleanedExpired": cleaned,
	})
}

// CleanupSessions sweeps expired sessions on demand.
// POST /api/v1/admin/sessions/cleanup
func (h *AdminHandler) CleanupSessions(c *gin.Context) {
	cleaned, err := h.sessions.CleanupExpired(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleanedExpired": cleaned})
}

// DeactivateSession flags one session inactive.
// DELETE /api/v1/admin/sessions?sessionId=...
func (h *AdminHandler) DeactivateSession(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Session ID is required"))
		return
	}

	existed, err := h.sessions.Deactivate(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	if !existed {
		apperrors.HandleError(c, apperrors.ErrSessionNotFound(sessionID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListTransactions returns transactions filtered by status or plan plus a
// per-status summary. The summary and total always cover the full
// filtered set; limit only truncates the returned list.
// GET /api/v1/admin/transactions?status=PENDING&plan=monthly&limit=50
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		transactions []models.PaymentTransaction
		err          error
	)
	switch {
	case c.Query("status") != "":
		transactions, err = h.transactions.GetByStatus(ctx, models.TransactionStatus(c.Query("status")))
	case c.Query("plan") != "":
		transactions, err = h.transactions.GetByPlan(ctx, c.Query("plan"))
	default:
		transactions, err = h.transactions.GetAll(ctx)
	}
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}

	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})

	var summary models.TransactionSummary
	for _, tx := range transactions {
		switch tx.Status {
		case models.TransactionStatusPending:
			summary.Pending++
		case models.TransactionStatusPaid:
			summary.Paid++
		case models.TransactionStatusExpired:
			summary.Expired++
		case models.TransactionStatusCancelled:
			summary.Cancelled++
		}
	}

	total := len(transactions)
	if limit := ParseQueryInt(c, "limit", 0); limit > 0 && limit < len(transactions) {
		transactions = transactions[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"summary":      summary,
		"total":        total,
	})
}

// CleanupTransactions expires PENDING transactions past their deadline.
// POST /api/v1/admin/transactions/cleanup
func (h *AdminHandler) CleanupTransactions(c *gin.Context) {
	cleaned, err := h.transactions.CleanupExpired(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleanedExpired": cleaned})
}
