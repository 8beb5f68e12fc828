package handlers

import (
	"net/http"

	"membership_backend/internal/config"
	"membership_backend/internal/logger"
	"membership_backend/internal/middleware"
	"membership_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves signup and the session lifecycle endpoints.
type AuthHandler struct {
	*BaseHandler
	cfg      *config.Config
	auth     *services.AuthService
	sessions *services.SessionService
}

func NewAuthHandler(base *BaseHandler, cfg *config.Config, auth *services.AuthService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, cfg: cfg, auth: auth, sessions: sessions}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.GET("/session", h.GetSession)
		auth.DELETE("/session", h.Logout)
		auth.POST("/extend", h.Extend)
	}

	members := api.Group("/members")
	members.Use(middleware.RequireMembership(h.cfg, h.sessions))
	{
		members.GET("/me", h.Me)
	}
}

// Signup records pending credentials ahead of payment confirmation.
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.auth.Signup(c.Request.Context(), req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSession reports whether the caller holds a valid membership.
// GET /api/v1/auth/session
func (h *AuthHandler) GetSession(c *gin.Context) {
	token := middleware.SessionToken(c)
	membership, err := h.sessions.Verify(c.Request.Context(), token)
	if err != nil {
		middleware.ClearSessionCookie(c, h.cfg)
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"session":       membership,
	})
}

// Logout deactivates the session best-effort. The cookie is cleared and
// success reported regardless of the outcome.
// DELETE /api/v1/auth/session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		logger.CtxWithError(c.Request.Context(), "session deactivation failed during logout", err)
	}
	middleware.ClearSessionCookie(c, h.cfg)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the membership verified by the route middleware.
// GET /api/v1/members/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"membership": middleware.MembershipFromContext(c)})
}

// Extend re-issues the membership token for another full period.
// POST /api/v1/auth/extend
func (h *AuthHandler) Extend(c *gin.Context) {
	token, membership, maxAge, err := h.sessions.Extend(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	middleware.SetSessionCookie(c, h.cfg, token, maxAge)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"expiresAt": membership.ExpiresAt,
	})
}
