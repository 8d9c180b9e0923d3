package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
)

// CartLineResponse represents one cart line in API responses
type CartLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SummaryResponse represents the derived cart totals
type SummaryResponse struct {
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse represents the full cart for an owner
type CartResponse struct {
	Lines   []CartLineResponse `json:"lines"`
	Summary SummaryResponse    `json:"summary"`
}

// Merge outcome actions
const (
	MergeActionMoved    = "moved"
	MergeActionCombined = "combined"
)

// MergeOutcome records what happened to one session line during a merge
type MergeOutcome struct {
	ProductID uuid.UUID `json:"product_id"`
	Action    string    `json:"action"`
	Quantity  int       `json:"quantity"`
	Clamped   bool      `json:"clamped"`
}

// MergeResponse is the result of a merge-on-login
type MergeResponse struct {
	AlreadyMerged bool           `json:"already_merged"`
	Outcomes      []MergeOutcome `json:"outcomes"`
}

// ToCartLineResponse converts a cart line to its response representation
func ToCartLineResponse(l *cart.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:        l.ID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		LineTotal: l.LineTotal(),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// ToCartResponse converts lines to the full cart response with summary
func ToCartResponse(lines []cart.CartLine) CartResponse {
	responses := make([]CartLineResponse, 0, len(lines))
	for i := range lines {
		responses = append(responses, ToCartLineResponse(&lines[i]))
	}
	summary := cart.Summarize(lines)
	return CartResponse{
		Lines: responses,
		Summary: SummaryResponse{
			ItemCount: summary.ItemCount,
			LineCount: summary.LineCount,
			Subtotal:  summary.Subtotal,
		},
	}
}
