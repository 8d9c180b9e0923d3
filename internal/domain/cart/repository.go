package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartLineRepository defines the interface for cart line persistence.
// No two rows exist for the same (owner, product) pair at any observable
// time: callers probe FindOne before inserting, and the schema backs the
// invariant with per-owner unique indexes.
type CartLineRepository interface {
	// FindByID finds a cart line by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*CartLine, error)

	// FindByOwner finds all cart lines for an owner, oldest first
	FindByOwner(ctx context.Context, owner Owner) ([]CartLine, error)

	// FindOne finds the line for an (owner, product) pair
	FindOne(ctx context.Context, owner Owner, productID uuid.UUID) (*CartLine, error)

	// Save creates or updates a cart line
	Save(ctx context.Context, line *CartLine) error

	// Delete deletes a cart line
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAllForOwner deletes every line belonging to an owner
	DeleteAllForOwner(ctx context.Context, owner Owner) error

	// CountForOwner counts the lines belonging to an owner
	CountForOwner(ctx context.Context, owner Owner) (int64, error)

	// SumQuantityForOwner sums the quantities over an owner's lines
	SumQuantityForOwner(ctx context.Context, owner Owner) (int64, error)
}
