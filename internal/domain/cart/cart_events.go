package cart

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Event types for the cart line aggregate
const (
	EventTypeLineAdded      = "cart.line.added"
	EventTypeLineReassigned = "cart.line.reassigned"
	EventTypeCartMerged     = "cart.merged"
)

// LineAddedEvent is raised when a product first enters a cart
type LineAddedEvent struct {
	shared.BaseDomainEvent
	Owner     string    `json:"owner"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// NewLineAddedEvent creates a LineAddedEvent
func NewLineAddedEvent(l *CartLine) *LineAddedEvent {
	return &LineAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineAdded, "CartLine", l.ID),
		Owner:           l.Owner().String(),
		ProductID:       l.ProductID,
		Quantity:        l.Quantity,
	}
}

// LineReassignedEvent is raised when a session line moves to a user at login
type LineReassignedEvent struct {
	shared.BaseDomainEvent
	FromSession string    `json:"from_session"`
	ToUser      uuid.UUID `json:"to_user"`
}

// NewLineReassignedEvent creates a LineReassignedEvent
func NewLineReassignedEvent(l *CartLine, fromSession string) *LineReassignedEvent {
	var toUser uuid.UUID
	if l.UserID != nil {
		toUser = *l.UserID
	}
	return &LineReassignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineReassigned, "CartLine", l.ID),
		FromSession:     fromSession,
		ToUser:          toUser,
	}
}
