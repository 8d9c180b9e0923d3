package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		CookieName: "cart_session",
		CookiePath: "/",
		Secure:     false,
		SameSite:   "lax",
		MaxAge:     30 * 24 * time.Hour,
	}
}

func ownerProbeRouter(cfg config.SessionConfig, jwtService *auth.JWTService) (*gin.Engine, *cart.Owner, *string) {
	var capturedOwner cart.Owner
	var capturedSession string

	router := gin.New()
	if jwtService != nil {
		router.Use(OptionalAuth(jwtService))
	}
	router.Use(ResolveOwner(cfg))
	router.GET("/probe", func(c *gin.Context) {
		owner, _ := GetOwner(c)
		capturedOwner = owner
		capturedSession = GetSessionID(c)
		c.Status(http.StatusOK)
	})

	return router, &capturedOwner, &capturedSession
}

func TestResolveOwner_CookieSession(t *testing.T) {
	router, owner, _ := ownerProbeRouter(testSessionConfig(), nil)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "sess-from-cookie"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, owner.IsSession())
	sessionID, _ := owner.SessionID()
	assert.Equal(t, "sess-from-cookie", sessionID)
	// no new cookie issued when one already exists
	assert.Empty(t, w.Result().Cookies())
}

func TestResolveOwner_HeaderSession(t *testing.T) {
	router, owner, _ := ownerProbeRouter(testSessionConfig(), nil)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set(SessionIDHeader, "sess-from-header")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, owner.IsSession())
	sessionID, _ := owner.SessionID()
	assert.Equal(t, "sess-from-header", sessionID)
}

func TestResolveOwner_CookieWinsOverHeader(t *testing.T) {
	router, owner, _ := ownerProbeRouter(testSessionConfig(), nil)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "from-cookie"})
	req.Header.Set(SessionIDHeader, "from-header")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	sessionID, _ := owner.SessionID()
	assert.Equal(t, "from-cookie", sessionID)
}

func TestResolveOwner_IssuesNewSession(t *testing.T) {
	router, owner, _ := ownerProbeRouter(testSessionConfig(), nil)

	req := httptest.NewRequest("GET", "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, owner.IsSession())
	sessionID, _ := owner.SessionID()
	require.NotEmpty(t, sessionID)
	_, err := uuid.Parse(sessionID)
	assert.NoError(t, err, "generated session IDs are UUIDs")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestResolveOwner_AuthenticatedUserWins(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test",
	})
	userID := uuid.New()
	token, _, err := jwtService.GenerateAccessToken(userID, "")
	require.NoError(t, err)

	router, owner, sessionID := ownerProbeRouter(testSessionConfig(), jwtService)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "lingering-session"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, owner.IsUser())
	gotUserID, _ := owner.UserID()
	assert.Equal(t, userID, gotUserID)

	// the anonymous session is still resolvable for the merge endpoint
	assert.Equal(t, "lingering-session", *sessionID)
}

func TestResolveOwner_InvalidTokenFallsBackToSession(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test",
	})

	router, owner, _ := ownerProbeRouter(testSessionConfig(), jwtService)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "sess-1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, owner.IsSession())
}
