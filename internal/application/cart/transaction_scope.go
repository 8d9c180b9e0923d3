package cart

import (
	"context"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
)

// TransactionScope provides transactional access to the cart repositories.
// Every read-then-write sequence in the cart engine runs inside Execute so
// that two concurrent requests for the same owner cannot both read the same
// line and write conflicting quantities. A failure anywhere in fn rolls the
// whole unit back; partial writes are never committed.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the cart and catalog
// repositories within a transaction. All repositories returned share the
// same underlying database transaction.
type TransactionalRepositories interface {
	// CartLines returns the cart line repository scoped to the current transaction
	CartLines() cart.CartLineRepository
	// Products returns the product repository scoped to the current transaction
	Products() catalog.ProductRepository
}

// NoOpTransactionScope runs the function against fixed repositories without
// a real transaction. Used in tests and wherever transactional guarantees
// come from elsewhere.
type NoOpTransactionScope struct {
	cartLines cart.CartLineRepository
	products  catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(cartLines cart.CartLineRepository, products catalog.ProductRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		cartLines: cartLines,
		products:  products,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CartLines returns the cart line repository
func (s *NoOpTransactionScope) CartLines() cart.CartLineRepository {
	return s.cartLines
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.products
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
