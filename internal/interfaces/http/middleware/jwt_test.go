package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func authProbeRouter(middlewareFunc gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middlewareFunc)
	router.GET("/probe", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})
	return router
}

func TestRequireAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()
	token, _, err := svc.GenerateAccessToken(userID, "shopper@example.com")
	require.NoError(t, err)

	router := authProbeRouter(RequireAuth(svc, zap.NewNop()))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	router := authProbeRouter(RequireAuth(newTestJWTService(), zap.NewNop()))

	req := httptest.NewRequest("GET", "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, "ERR_TOKEN_INVALID", errInfo["code"])
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	expiredSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Minute,
		Issuer:                "test-issuer",
	})
	token, _, err := expiredSvc.GenerateAccessToken(uuid.New(), "")
	require.NoError(t, err)

	router := authProbeRouter(RequireAuth(expiredSvc, zap.NewNop()))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, "ERR_TOKEN_EXPIRED", errInfo["code"])
}

func TestOptionalAuth_NoToken(t *testing.T) {
	router := authProbeRouter(OptionalAuth(newTestJWTService()))

	req := httptest.NewRequest("GET", "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestOptionalAuth_InvalidTokenIgnored(t *testing.T) {
	router := authProbeRouter(OptionalAuth(newTestJWTService()))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()
	token, _, err := svc.GenerateAccessToken(userID, "")
	require.NoError(t, err)

	router := authProbeRouter(OptionalAuth(svc))

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestGetJWTClaims_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
}
