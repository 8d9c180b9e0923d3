package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// Context keys for the resolved cart identity
const (
	OwnerKey     = "cart_owner"
	SessionIDKey = "cart_session_id"

	// SessionIDHeader lets non-browser clients carry their anonymous
	// session without cookies
	SessionIDHeader = "X-Session-ID"
)

// ResolveOwner resolves the cart identity for every request: the JWT user
// when one is authenticated, otherwise the anonymous session from the
// session cookie or X-Session-ID header. Anonymous visitors without either
// get a fresh session ID and a cookie carrying it.
//
// Must run after OptionalAuth so JWT claims are already in the context.
func ResolveOwner(cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := resolveSessionID(c, cfg)
		if sessionID != "" {
			c.Set(SessionIDKey, sessionID)
		}

		if userIDStr := GetJWTUserID(c); userIDStr != "" {
			if userID, err := uuid.Parse(userIDStr); err == nil && userID != uuid.Nil {
				c.Set(OwnerKey, cart.UserOwner(userID))
				c.Next()
				return
			}
		}

		if sessionID == "" {
			sessionID = uuid.New().String()
			c.Set(SessionIDKey, sessionID)
			issueSessionCookie(c, cfg, sessionID)
		}

		c.Set(OwnerKey, cart.SessionOwner(sessionID))
		c.Next()
	}
}

func resolveSessionID(c *gin.Context, cfg config.SessionConfig) string {
	if cookie, err := c.Cookie(cfg.CookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.GetHeader(SessionIDHeader)
}

func issueSessionCookie(c *gin.Context, cfg config.SessionConfig, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    sessionID,
		Path:     cfg.CookiePath,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.SameSite),
	})
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetOwner retrieves the resolved cart owner from the context
func GetOwner(c *gin.Context) (cart.Owner, bool) {
	if v, exists := c.Get(OwnerKey); exists {
		if owner, ok := v.(cart.Owner); ok {
			return owner, true
		}
	}
	return cart.Owner{}, false
}

// GetSessionID retrieves the anonymous session ID from the context. It is
// present even for authenticated requests when the client still carries a
// session cookie, which is what the merge-on-login endpoint needs.
func GetSessionID(c *gin.Context) string {
	if v, exists := c.Get(SessionIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
