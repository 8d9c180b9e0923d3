package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartLine represents one product quantity held by one owner.
// Exactly one of UserID/SessionID is set for the lifetime of the line;
// ownership moves wholesale during merge, never splits. Quantity stays >= 1
// while the line exists - a zero-quantity update deletes the line instead.
type CartLine struct {
	shared.BaseAggregateRoot
	UserID    *uuid.UUID      `gorm:"type:uuid;index"`
	SessionID *string         `gorm:"type:varchar(100);index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CartLine) TableName() string {
	return "cart_lines"
}

// NewCartLine creates a line for an owner with a point-in-time price snapshot
func NewCartLine(owner Owner, productID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*CartLine, error) {
	if owner.IsZero() {
		return nil, shared.ErrInvalidOwner
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	line := &CartLine{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
	}
	line.setOwner(owner)

	line.AddDomainEvent(NewLineAddedEvent(line))

	return line, nil
}

func (l *CartLine) setOwner(owner Owner) {
	if id, ok := owner.UserID(); ok {
		l.UserID = &id
		l.SessionID = nil
		return
	}
	if id, ok := owner.SessionID(); ok {
		l.SessionID = &id
		l.UserID = nil
	}
}

// Owner returns the line's owner identity
func (l *CartLine) Owner() Owner {
	if l.UserID != nil {
		return UserOwner(*l.UserID)
	}
	if l.SessionID != nil {
		return SessionOwner(*l.SessionID)
	}
	return Owner{}
}

// BelongsTo reports whether the line is owned by the given identity
func (l *CartLine) BelongsTo(owner Owner) bool {
	if id, ok := owner.UserID(); ok {
		return l.UserID != nil && *l.UserID == id
	}
	if id, ok := owner.SessionID(); ok {
		return l.SessionID != nil && *l.SessionID == id
	}
	return false
}

// OwnerValid reports the one-owner invariant: exactly one identity column set
func (l *CartLine) OwnerValid() bool {
	return (l.UserID != nil) != (l.SessionID != nil)
}

// ChangeQuantity sets the quantity. Zero is not a valid stored quantity;
// callers delete the line instead.
func (l *CartLine) ChangeQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1; delete the line to remove it")
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// AddQuantity increases the quantity by delta
func (l *CartLine) AddQuantity(delta int) error {
	if delta < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Added quantity must be at least 1")
	}
	return l.ChangeQuantity(l.Quantity + delta)
}

// SyncPrice refreshes the unit price snapshot to the current display price
func (l *CartLine) SyncPrice(price decimal.Decimal) {
	l.UnitPrice = price
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// ReassignToUser transfers a session-owned line to a user at login.
// The reassignment happens in place: the price snapshot and CreatedAt survive.
func (l *CartLine) ReassignToUser(userID uuid.UUID) error {
	if l.SessionID == nil {
		return shared.NewDomainError("INVALID_STATE", "Only session-owned lines can be reassigned")
	}
	if userID == uuid.Nil {
		return shared.ErrInvalidOwner
	}
	fromSession := *l.SessionID
	l.UserID = &userID
	l.SessionID = nil
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLineReassignedEvent(l, fromSession))

	return nil
}

// LineTotal returns unit price times quantity
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
