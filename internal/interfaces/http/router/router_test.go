package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("cart", "/cart")
	r.Register(group)

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("cart", "/cart")
	group.GET("/count", func(c *gin.Context) {
		c.String(http.StatusOK, "0")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/cart/count", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Body.String())
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	noop := func(c *gin.Context) { c.Status(http.StatusOK) }

	group := NewDomainGroup("products", "/products")
	group.GET("", noop).
		POST("", noop).
		PUT("/:id", noop).
		PATCH("/:id", noop).
		DELETE("/:id", noop)

	r.Register(group)
	r.Setup()

	assert.Equal(t, "products", group.Name())
	assert.Equal(t, "/products", group.Prefix())

	for _, tc := range []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/products"},
		{"POST", "/api/v1/products"},
		{"PUT", "/api/v1/products/123"},
		{"PATCH", "/api/v1/products/123"},
		{"DELETE", "/api/v1/products/123"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("cart", "/cart")
	items := group.Group("items", "/items")
	items.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "items")
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/cart/items", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "items", w.Body.String())
}

func TestRouterUse(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-API", "1")
		c.Next()
	})

	group := NewDomainGroup("cart", "/cart")
	group.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-API"))
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("cart", "/cart")
	group.Use(func(c *gin.Context) {
		c.Header("X-Touched", "1")
		c.Next()
	})
	group.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.Register(group)
	r.Setup()

	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Touched"))
}
