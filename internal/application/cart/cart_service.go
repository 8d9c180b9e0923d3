package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const writeRetryAttempts = 3

// CartService exposes the cart mutation API. Every mutating operation
// consults the current catalog truth first, applies the cart policy, and
// persists through the line store inside one transaction per request.
// Writes that lose a concurrency race (stale version, or a simultaneous
// insert hitting the per-owner product uniqueness) are retried against
// fresh state, so the loser ends with the stock verdict, not a raw conflict.
type CartService struct {
	lines    cart.CartLineRepository
	products catalog.ProductRepository
	scope    TransactionScope
	logger   *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	lines cart.CartLineRepository,
	products catalog.ProductRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		lines:    lines,
		products: products,
		scope:    scope,
		logger:   logger,
	}
}

// GetCart returns all lines and the derived summary for an owner
func (s *CartService) GetCart(ctx context.Context, owner cart.Owner) (*CartResponse, error) {
	if owner.IsZero() {
		return nil, shared.ErrInvalidOwner
	}

	lines, err := s.lines.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	response := ToCartResponse(lines)
	return &response, nil
}

// AddItem adds quantity of a product to the owner's cart. If a line for the
// product already exists the quantities are combined; otherwise a new line is
// created with the product's display price snapshotted at this instant.
func (s *CartService) AddItem(ctx context.Context, owner cart.Owner, productID uuid.UUID, quantity int) (*CartLineResponse, error) {
	if owner.IsZero() {
		return nil, shared.ErrInvalidOwner
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	result, err := s.retryWrite(ctx, owner, func() (*cart.CartLine, error) {
		return s.addItemOnce(ctx, owner, productID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		zap.String("owner", owner.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)

	response := ToCartLineResponse(result)
	return &response, nil
}

func (s *CartService) addItemOnce(ctx context.Context, owner cart.Owner, productID uuid.UUID, quantity int) (*cart.CartLine, error) {
	var result *cart.CartLine
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.IsActive() {
			return shared.ErrProductUnavailable
		}
		if product.Stock == 0 {
			return shared.ErrOutOfStock
		}

		existing, err := repos.CartLines().FindOne(ctx, owner, productID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		if existing != nil {
			newQuantity := existing.Quantity + quantity
			if !product.HasStock(newQuantity) {
				return cart.NewInsufficientStockError(productID, newQuantity, product.Stock)
			}
			if err := existing.ChangeQuantity(newQuantity); err != nil {
				return err
			}
			if err := repos.CartLines().Save(ctx, existing); err != nil {
				return err
			}
			result = existing
			return nil
		}

		if !product.HasStock(quantity) {
			return cart.NewInsufficientStockError(productID, quantity, product.Stock)
		}

		line, err := cart.NewCartLine(owner, productID, quantity, product.DisplayPrice())
		if err != nil {
			return err
		}
		if err := repos.CartLines().Save(ctx, line); err != nil {
			return err
		}
		result = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// retryWrite runs a transactional cart write, rerunning it on concurrency
// conflicts so the retry re-probes the state the winner left behind
func (s *CartService) retryWrite(ctx context.Context, owner cart.Owner, write func() (*cart.CartLine, error)) (*cart.CartLine, error) {
	var result *cart.CartLine
	var err error
	for attempt := 1; attempt <= writeRetryAttempts; attempt++ {
		result, err = write()
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
		s.logger.Warn("cart write conflict, retrying",
			zap.String("owner", owner.String()),
			zap.Int("attempt", attempt),
		)
	}
	return result, err
}

// UpdateItem sets the quantity of an existing line. A quantity of zero
// deletes the line; the unit price snapshot is never touched here.
// Returns nil when the line was deleted.
func (s *CartService) UpdateItem(ctx context.Context, owner cart.Owner, lineID uuid.UUID, quantity int) (*CartLineResponse, error) {
	if owner.IsZero() {
		return nil, shared.ErrInvalidOwner
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	result, err := s.retryWrite(ctx, owner, func() (*cart.CartLine, error) {
		return s.updateItemOnce(ctx, owner, lineID, quantity)
	})
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}
	response := ToCartLineResponse(result)
	return &response, nil
}

// updateItemOnce runs one update attempt. A nil line with a nil error means
// the line was deleted.
func (s *CartService) updateItemOnce(ctx context.Context, owner cart.Owner, lineID uuid.UUID, quantity int) (*cart.CartLine, error) {
	var result *cart.CartLine
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.CartLines().FindByID(ctx, lineID)
		if err != nil {
			return err
		}
		// A line belonging to someone else is indistinguishable from absent
		if !line.BelongsTo(owner) {
			return shared.ErrNotFound
		}

		if quantity == 0 {
			return repos.CartLines().Delete(ctx, line.ID)
		}

		product, err := repos.Products().FindByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return cart.NewInsufficientStockError(line.ProductID, quantity, product.Stock)
		}

		if err := line.ChangeQuantity(quantity); err != nil {
			return err
		}
		if err := repos.CartLines().Save(ctx, line); err != nil {
			return err
		}
		result = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes a line from the owner's cart
func (s *CartService) RemoveItem(ctx context.Context, owner cart.Owner, lineID uuid.UUID) error {
	if owner.IsZero() {
		return shared.ErrInvalidOwner
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		line, err := repos.CartLines().FindByID(ctx, lineID)
		if err != nil {
			return err
		}
		if !line.BelongsTo(owner) {
			return shared.ErrNotFound
		}
		return repos.CartLines().Delete(ctx, line.ID)
	})
}

// ClearCart removes every line belonging to the owner
func (s *CartService) ClearCart(ctx context.Context, owner cart.Owner) error {
	if owner.IsZero() {
		return shared.ErrInvalidOwner
	}
	return s.lines.DeleteAllForOwner(ctx, owner)
}

// GetSummary recomputes the derived totals from the current lines
func (s *CartService) GetSummary(ctx context.Context, owner cart.Owner) (*SummaryResponse, error) {
	if owner.IsZero() {
		return nil, shared.ErrInvalidOwner
	}

	lines, err := s.lines.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	summary := cart.Summarize(lines)
	return &SummaryResponse{
		ItemCount: summary.ItemCount,
		LineCount: summary.LineCount,
		Subtotal:  summary.Subtotal,
	}, nil
}

// GetCount returns the total item count across the owner's lines
func (s *CartService) GetCount(ctx context.Context, owner cart.Owner) (int64, error) {
	if owner.IsZero() {
		return 0, shared.ErrInvalidOwner
	}
	return s.lines.SumQuantityForOwner(ctx, owner)
}

// ValidateCart reconciles the owner's cart against current catalog truth.
// Deterministic repairs (quantity clamps, price resyncs) are persisted before
// returning; issues come back as a structured report, never as an error, so
// the caller decides whether to block checkout.
func (s *CartService) ValidateCart(ctx context.Context, owner cart.Owner) (*cart.ValidationReport, error) {
	if owner.IsZero() {
		return nil, shared.ErrInvalidOwner
	}

	report := cart.NewValidationReport()
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lines, err := repos.CartLines().FindByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}

		productIDs := make([]uuid.UUID, 0, len(lines))
		for i := range lines {
			productIDs = append(productIDs, lines[i].ProductID)
		}
		products, err := repos.Products().FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		snapshots := make(map[uuid.UUID]catalog.Snapshot, len(products))
		for i := range products {
			snapshots[products[i].ID] = products[i].ToSnapshot()
		}

		for i := range lines {
			line := &lines[i]
			var snap *catalog.Snapshot
			if s, ok := snapshots[line.ProductID]; ok {
				snap = &s
			}
			messages, repairs := cart.ReconcileLine(line, snap)
			if len(repairs) > 0 {
				if err := repos.CartLines().Save(ctx, line); err != nil {
					return err
				}
			}
			report.Record(line.ID, line.ProductID, messages, repairs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !report.Valid {
		s.logger.Info("cart validation found issues",
			zap.String("owner", owner.String()),
			zap.Int("issues", len(report.Issues)),
			zap.Int("repairs", len(report.Repaired)),
		)
	}

	return report, nil
}
