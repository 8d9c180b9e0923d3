package cart

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Summary is the derived view of a cart: never persisted, recomputed on
// demand from the current lines.
type Summary struct {
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Summarize computes the summary over a set of cart lines
func Summarize(lines []CartLine) Summary {
	subtotal := valueobject.ZeroUSD()
	itemCount := 0
	for i := range lines {
		itemCount += lines[i].Quantity
		subtotal = subtotal.MustAdd(valueobject.NewMoneyUSD(lines[i].LineTotal()))
	}
	return Summary{
		ItemCount: itemCount,
		LineCount: len(lines),
		Subtotal:  subtotal.Amount(),
	}
}
