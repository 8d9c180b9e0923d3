package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart API endpoints. The owner (user or anonymous
// session) is resolved by middleware before any of these run.
type CartHandler struct {
	BaseHandler
	cartService  *cartapp.CartService
	mergeService *cartapp.MergeService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService, mergeService *cartapp.MergeService) *CartHandler {
	return &CartHandler{
		cartService:  cartService,
		mergeService: mergeService,
	}
}

// AddItemRequest represents a request to add a product to the cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a request to set a line's quantity.
// Quantity zero removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// MergeRequest represents a merge-on-login request. SessionID is optional;
// when absent the session cookie or X-Session-ID header is used.
type MergeRequest struct {
	SessionID string `json:"session_id"`
}

// RegisterRoutes registers cart routes on the given group
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCount)
		cart.GET("/summary", h.GetSummary)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
		cart.POST("/validate", h.ValidateCart)
		cart.POST("/merge", h.Merge)
	}
}

// GetCart returns all lines and the derived summary for the current owner
func (h *CartHandler) GetCart(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	response, err := h.cartService.GetCart(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetCount returns the total quantity across all lines, for badge display
func (h *CartHandler) GetCount(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	count, err := h.cartService.GetCount(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"count": count})
}

// GetSummary returns just the cart totals
func (h *CartHandler) GetSummary(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	summary, err := h.cartService.GetSummary(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// AddItem adds a product to the cart, combining with an existing line
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	line, err := h.cartService.AddItem(c.Request.Context(), owner, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, line)
}

// UpdateItem sets a line's quantity; zero removes the line
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	line, err := h.cartService.UpdateItem(c.Request.Context(), owner, lineID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if line == nil {
		// quantity zero removed the line
		h.NoContent(c)
		return
	}
	h.Success(c, line)
}

// RemoveItem deletes a line from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), owner, lineID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ClearCart removes every line for the current owner
func (h *CartHandler) ClearCart(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), owner); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ValidateCart reconciles the cart against the catalog, persisting silent
// repairs and reporting remaining issues
func (h *CartHandler) ValidateCart(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No cart identity could be resolved")
		return
	}

	report, err := h.cartService.ValidateCart(c.Request.Context(), owner)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Merge folds the anonymous session cart into the authenticated user's
// cart. Requires authentication; the route carries RequireAuth.
func (h *CartHandler) Merge(c *gin.Context) {
	userIDStr := middleware.GetJWTUserID(c)
	userID, err := uuid.Parse(userIDStr)
	if err != nil || userID == uuid.Nil {
		h.Unauthorized(c, "Authentication required to merge carts")
		return
	}

	var req MergeRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = middleware.GetSessionID(c)
	}
	if sessionID == "" {
		h.Error(c, 400, dto.ErrCodeInvalidOwner, "No anonymous session to merge")
		return
	}

	result, err := h.mergeService.MergeOnLogin(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
