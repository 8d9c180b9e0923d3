package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// Issue messages reported by cart validation
const (
	IssueUnavailable       = "unavailable"
	IssueOutOfStock        = "out of stock"
	IssueInsufficientStock = "insufficient stock"
	IssuePriceChanged      = "price changed"
)

// Fields named in repair records
const (
	RepairFieldQuantity  = "quantity"
	RepairFieldUnitPrice = "unit_price"
)

// priceTolerance is the absolute drift between the stored unit price and the
// current display price below which the snapshot is considered in sync.
var priceTolerance = decimal.New(1, -2) // 0.01

// LineIssue describes the problems validation found on one line
type LineIssue struct {
	LineID    uuid.UUID `json:"line_id"`
	ProductID uuid.UUID `json:"product_id"`
	Messages  []string  `json:"messages"`
}

// Repair records a silent fix applied to a line during validation
type Repair struct {
	LineID   uuid.UUID `json:"line_id"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
}

// ValidationReport is the outcome of reconciling a cart against catalog truth.
// It is data, not an error: the caller decides whether to block checkout.
type ValidationReport struct {
	Valid    bool        `json:"valid"`
	Issues   []LineIssue `json:"issues"`
	Repaired []Repair    `json:"repaired"`
}

// NewValidationReport creates an empty, valid report
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		Valid:    true,
		Issues:   make([]LineIssue, 0),
		Repaired: make([]Repair, 0),
	}
}

// Record adds a line's reconciliation outcome to the report
func (r *ValidationReport) Record(lineID, productID uuid.UUID, messages []string, repairs []Repair) {
	if len(messages) > 0 {
		r.Valid = false
		r.Issues = append(r.Issues, LineIssue{
			LineID:    lineID,
			ProductID: productID,
			Messages:  messages,
		})
	}
	r.Repaired = append(r.Repaired, repairs...)
}

// ReconcileLine evaluates one line against the current product snapshot and
// applies the deterministic repairs in place. The availability chain reports
// at most one issue, checked in fixed order: unavailable, out of stock,
// insufficient stock. The price-drift check is independent and runs
// regardless of which availability issue fired.
//
// Repairs:
//   - insufficient stock: quantity clamped to the available stock
//   - price drift beyond the tolerance: unit price resynced to display price
//
// Unavailable and out-of-stock lines are left untouched; the caller must
// remove them explicitly. A nil snapshot (product deleted from the catalog)
// is treated as unavailable.
func ReconcileLine(line *CartLine, snap *catalog.Snapshot) (messages []string, repairs []Repair) {
	if snap == nil || !snap.IsActive {
		messages = append(messages, IssueUnavailable)
	} else if snap.Stock < line.Quantity {
		if snap.Stock == 0 {
			messages = append(messages, IssueOutOfStock)
		} else {
			messages = append(messages, IssueInsufficientStock)
			repairs = append(repairs, Repair{
				LineID:   line.ID,
				Field:    RepairFieldQuantity,
				OldValue: decimal.NewFromInt(int64(line.Quantity)).String(),
				NewValue: decimal.NewFromInt(int64(snap.Stock)).String(),
			})
			// Clamp to what the catalog can still deliver
			_ = line.ChangeQuantity(snap.Stock)
		}
	}

	if snap != nil {
		if line.UnitPrice.Sub(snap.DisplayPrice).Abs().GreaterThan(priceTolerance) {
			messages = append(messages, IssuePriceChanged)
			repairs = append(repairs, Repair{
				LineID:   line.ID,
				Field:    RepairFieldUnitPrice,
				OldValue: line.UnitPrice.String(),
				NewValue: snap.DisplayPrice.String(),
			})
			line.SyncPrice(snap.DisplayPrice)
		}
	}

	return messages, repairs
}
