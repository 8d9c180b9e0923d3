package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCartTestDB creates an in-memory SQLite database for testing
func setupCartTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE cart_lines (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			session_id TEXT,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			CHECK ((user_id IS NULL) != (session_id IS NULL))
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE UNIQUE INDEX idx_cart_lines_user_product
		ON cart_lines (user_id, product_id) WHERE user_id IS NOT NULL
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE UNIQUE INDEX idx_cart_lines_session_product
		ON cart_lines (session_id, product_id) WHERE session_id IS NOT NULL
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			price TEXT NOT NULL,
			sale_price TEXT,
			stock INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func mustNewLine(t *testing.T, owner cart.Owner, productID uuid.UUID, qty int, price string) *cart.CartLine {
	t.Helper()
	line, err := cart.NewCartLine(owner, productID, qty, decimal.RequireFromString(price))
	require.NoError(t, err)
	return line
}

func TestGormCartLineRepository_SaveAndFindByID(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.UserOwner(uuid.New())
	line := mustNewLine(t, owner, uuid.New(), 2, "19.99")

	require.NoError(t, repo.Save(ctx, line))

	found, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, line.ID, found.ID)
	assert.Equal(t, 2, found.Quantity)
	assert.True(t, found.UnitPrice.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, found.BelongsTo(owner))
}

func TestGormCartLineRepository_FindByID_NotFound(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCartLineRepository_FindByOwner_IsolatesOwners(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	userOwner := cart.UserOwner(uuid.New())
	sessionOwner := cart.SessionOwner("sess-1")

	require.NoError(t, repo.Save(ctx, mustNewLine(t, userOwner, uuid.New(), 1, "10.00")))
	require.NoError(t, repo.Save(ctx, mustNewLine(t, userOwner, uuid.New(), 3, "5.00")))
	require.NoError(t, repo.Save(ctx, mustNewLine(t, sessionOwner, uuid.New(), 2, "7.00")))

	userLines, err := repo.FindByOwner(ctx, userOwner)
	require.NoError(t, err)
	assert.Len(t, userLines, 2)

	sessionLines, err := repo.FindByOwner(ctx, sessionOwner)
	require.NoError(t, err)
	assert.Len(t, sessionLines, 1)
	assert.Equal(t, 2, sessionLines[0].Quantity)
}

func TestGormCartLineRepository_FindOne(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.SessionOwner("sess-2")
	productID := uuid.New()
	require.NoError(t, repo.Save(ctx, mustNewLine(t, owner, productID, 4, "12.50")))

	found, err := repo.FindOne(ctx, owner, productID)
	require.NoError(t, err)
	assert.Equal(t, productID, found.ProductID)

	_, err = repo.FindOne(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// same product under a different owner is a different line
	_, err = repo.FindOne(ctx, cart.UserOwner(uuid.New()), productID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCartLineRepository_Save_UpdatesExistingLine(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.UserOwner(uuid.New())
	line := mustNewLine(t, owner, uuid.New(), 1, "10.00")
	require.NoError(t, repo.Save(ctx, line))

	loaded, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.ChangeQuantity(5))
	require.NoError(t, repo.Save(ctx, loaded))

	found, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)
	assert.Equal(t, 2, found.Version)
}

func TestGormCartLineRepository_Save_CommitsMultipleMutationsAsOneStep(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.UserOwner(uuid.New())
	line := mustNewLine(t, owner, uuid.New(), 5, "12.00")
	require.NoError(t, repo.Save(ctx, line))

	// A reconciliation pass can clamp the quantity and resync the price on
	// the same loaded line before saving once
	loaded, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.ChangeQuantity(2))
	loaded.SyncPrice(decimal.RequireFromString("10.00"))
	require.NoError(t, repo.Save(ctx, loaded))

	found, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)
	assert.True(t, found.UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, loaded.Version, found.Version)

	// the saved line stays writable without a reload
	require.NoError(t, loaded.ChangeQuantity(1))
	assert.NoError(t, repo.Save(ctx, loaded))
}

func TestGormCartLineRepository_Save_DuplicateProductReportsConflict(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.UserOwner(uuid.New())
	productID := uuid.New()
	require.NoError(t, repo.Save(ctx, mustNewLine(t, owner, productID, 1, "4.00")))

	// a second insert for the same (owner, product) loses the unique index
	err := repo.Save(ctx, mustNewLine(t, owner, productID, 2, "4.00"))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	sessionOwner := cart.SessionOwner("sess-dup")
	require.NoError(t, repo.Save(ctx, mustNewLine(t, sessionOwner, productID, 1, "4.00")))
	err = repo.Save(ctx, mustNewLine(t, sessionOwner, productID, 3, "4.00"))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormCartLineRepository_Save_StaleVersionConflicts(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.UserOwner(uuid.New())
	line := mustNewLine(t, owner, uuid.New(), 1, "10.00")
	require.NoError(t, repo.Save(ctx, line))

	// two copies of the same row
	first, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)

	require.NoError(t, first.ChangeQuantity(2))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.ChangeQuantity(9))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Quantity)
}

func TestGormCartLineRepository_Save_PersistsReassignment(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	sessionOwner := cart.SessionOwner("sess-3")
	userID := uuid.New()
	line := mustNewLine(t, sessionOwner, uuid.New(), 2, "30.00")
	require.NoError(t, repo.Save(ctx, line))

	loaded, err := repo.FindByID(ctx, line.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.ReassignToUser(userID))
	require.NoError(t, repo.Save(ctx, loaded))

	userLines, err := repo.FindByOwner(ctx, cart.UserOwner(userID))
	require.NoError(t, err)
	require.Len(t, userLines, 1)
	assert.Nil(t, userLines[0].SessionID)

	sessionLines, err := repo.FindByOwner(ctx, sessionOwner)
	require.NoError(t, err)
	assert.Empty(t, sessionLines)
}

func TestGormCartLineRepository_Delete(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	line := mustNewLine(t, cart.SessionOwner("sess-4"), uuid.New(), 1, "3.00")
	require.NoError(t, repo.Save(ctx, line))

	require.NoError(t, repo.Delete(ctx, line.ID))
	assert.ErrorIs(t, repo.Delete(ctx, line.ID), shared.ErrNotFound)
}

func TestGormCartLineRepository_DeleteAllForOwner(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.SessionOwner("sess-5")
	other := cart.UserOwner(uuid.New())
	require.NoError(t, repo.Save(ctx, mustNewLine(t, owner, uuid.New(), 1, "1.00")))
	require.NoError(t, repo.Save(ctx, mustNewLine(t, owner, uuid.New(), 2, "2.00")))
	require.NoError(t, repo.Save(ctx, mustNewLine(t, other, uuid.New(), 3, "3.00")))

	require.NoError(t, repo.DeleteAllForOwner(ctx, owner))

	remaining, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	otherLines, err := repo.FindByOwner(ctx, other)
	require.NoError(t, err)
	assert.Len(t, otherLines, 1)
}

func TestGormCartLineRepository_CountAndSum(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	owner := cart.UserOwner(uuid.New())

	count, err := repo.CountForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	sum, err := repo.SumQuantityForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)

	require.NoError(t, repo.Save(ctx, mustNewLine(t, owner, uuid.New(), 2, "1.00")))
	require.NoError(t, repo.Save(ctx, mustNewLine(t, owner, uuid.New(), 5, "2.00")))

	count, err = repo.CountForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	sum, err = repo.SumQuantityForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sum)
}

func TestGormCartLineRepository_ZeroOwnerRejected(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewGormCartLineRepository(db)
	ctx := context.Background()

	_, err := repo.FindByOwner(ctx, cart.Owner{})
	assert.ErrorIs(t, err, shared.ErrInvalidOwner)

	err = repo.DeleteAllForOwner(ctx, cart.Owner{})
	assert.ErrorIs(t, err, shared.ErrInvalidOwner)
}
