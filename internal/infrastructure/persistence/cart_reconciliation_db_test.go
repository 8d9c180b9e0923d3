package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cart validation against real storage: the mocked service tests cannot see
// how repairs interact with the optimistic-lock save, so these run the full
// stack over SQLite.

func newDBCartService(t *testing.T) (*cartapp.CartService, *GormCartLineRepository, *GormProductRepository) {
	t.Helper()
	db := setupCartTestDB(t)
	lineRepo := NewGormCartLineRepository(db)
	productRepo := NewGormProductRepository(db)
	scope := NewGormTransactionScope(db)
	return cartapp.NewCartService(lineRepo, productRepo, scope, nil), lineRepo, productRepo
}

func TestCartService_ValidateCart_PersistsBothRepairsOnOneLine(t *testing.T) {
	service, lineRepo, productRepo := newDBCartService(t)
	ctx := context.Background()

	// current catalog truth: 2 in stock at 10.00
	product := mustNewProduct(t, "MUG-1", "Ceramic Mug", "10.00")
	require.NoError(t, product.SetStock(2))
	require.NoError(t, productRepo.Save(ctx, product))

	// stale line: 5 held at a 12.00 snapshot, needing both the quantity
	// clamp and the price resync
	owner := cart.UserOwner(uuid.New())
	line := mustNewLine(t, owner, product.ID, 5, "12.00")
	require.NoError(t, lineRepo.Save(ctx, line))

	report, err := service.ValidateCart(ctx, owner)
	require.NoError(t, err)

	assert.False(t, report.Valid)
	require.Len(t, report.Issues, 1)
	assert.ElementsMatch(t, []string{cart.IssueInsufficientStock, cart.IssuePriceChanged}, report.Issues[0].Messages)
	assert.Len(t, report.Repaired, 2)

	found, err := lineRepo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)
	assert.True(t, found.UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestCartService_ValidateCart_RepairedCartPassesSecondValidation(t *testing.T) {
	service, lineRepo, productRepo := newDBCartService(t)
	ctx := context.Background()

	product := mustNewProduct(t, "MUG-2", "Stoneware Mug", "10.00")
	require.NoError(t, product.SetStock(2))
	require.NoError(t, productRepo.Save(ctx, product))

	owner := cart.SessionOwner("sess-validate")
	line := mustNewLine(t, owner, product.ID, 5, "12.00")
	require.NoError(t, lineRepo.Save(ctx, line))

	first, err := service.ValidateCart(ctx, owner)
	require.NoError(t, err)
	require.False(t, first.Valid)

	second, err := service.ValidateCart(ctx, owner)
	require.NoError(t, err)
	assert.True(t, second.Valid)
	assert.Empty(t, second.Issues)
	assert.Empty(t, second.Repaired)
}
