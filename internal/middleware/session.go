package middleware

import (
	"net/http"
	"time"

	"membership_backend/internal/config"
	"membership_backend/internal/logger"
	"membership_backend/internal/services"
	"membership_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the HTTP-only cookie carrying the membership JWT.
const SessionCookieName = "membership-session"

const membershipContextKey = "membership"

// SetSessionCookie writes the membership cookie. Secure is tied to the
// environment so local HTTP development still works.
func SetSessionCookie(c *gin.Context, cfg *config.Config, token string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(maxAge.Seconds()), "/", "", cfg.IsProduction(), true)
}

// ClearSessionCookie expires the membership cookie immediately.
func ClearSessionCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", cfg.IsProduction(), true)
}

// SessionToken reads the raw token from the cookie, empty when absent.
func SessionToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

// RequireMembership verifies the session cookie and aborts with 401 when
// it is missing or invalid. The verified membership lands in the gin
// context for the handler.
func RequireMembership(cfg *config.Config, sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		membership, err := sessions.Verify(c.Request.Context(), token)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "membership check rejected",
				"path", c.Request.URL.Path,
				"ip", c.ClientIP(),
			)
			ClearSessionCookie(c, cfg)
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Valid membership session required"))
			c.Abort()
			return
		}
		c.Set(membershipContextKey, membership)
		c.Request = c.Request.WithContext(
			logger.WithSessionID(c.Request.Context(), membership.SessionID),
		)
		c.Next()
	}
}

// MembershipFromContext returns the membership stored by
// RequireMembership, or nil on unprotected routes.
func MembershipFromContext(c *gin.Context) *services.Membership {
	val, ok := c.Get(membershipContextKey)
	if !ok {
		return nil
	}
	m, ok := val.(*services.Membership)
	if !ok {
		return nil
	}
	return m
}
