package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCartLineRepository implements CartLineRepository using GORM.
// Owner predicates translate the owner union to the user_id/session_id
// columns; exactly one of the two is ever non-NULL per row.
type GormCartLineRepository struct {
	db *gorm.DB
}

// NewGormCartLineRepository creates a new GormCartLineRepository
func NewGormCartLineRepository(db *gorm.DB) *GormCartLineRepository {
	return &GormCartLineRepository{db: db}
}

// FindByID finds a cart line by its ID
func (r *GormCartLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.CartLine, error) {
	var line cart.CartLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	line.MarkStored()
	return &line, nil
}

// FindByOwner finds all cart lines for an owner, oldest first
func (r *GormCartLineRepository) FindByOwner(ctx context.Context, owner cart.Owner) ([]cart.CartLine, error) {
	query, err := r.ownerQuery(ctx, owner)
	if err != nil {
		return nil, err
	}

	var lines []cart.CartLine
	if err := query.Order("created_at ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].MarkStored()
	}
	return lines, nil
}

// FindOne finds the line for an (owner, product) pair
func (r *GormCartLineRepository) FindOne(ctx context.Context, owner cart.Owner, productID uuid.UUID) (*cart.CartLine, error) {
	query, err := r.ownerQuery(ctx, owner)
	if err != nil {
		return nil, err
	}

	var line cart.CartLine
	if err := query.Where("product_id = ?", productID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	line.MarkStored()
	return &line, nil
}

// Save creates or updates a cart line. Updates guard on the version the line
// was loaded with, so a concurrent writer surfaces as a conflict instead of a
// silent overwrite while any number of in-memory mutations commits as one
// step. A concurrent insert losing the (owner, product) unique index race is
// reported as the same conflict so callers can retry and re-probe.
func (r *GormCartLineRepository) Save(ctx context.Context, line *cart.CartLine) error {
	stored := line.StoredVersion()
	if stored == 0 {
		if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrConcurrencyConflict
			}
			return err
		}
		line.MarkStored()
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(line).
		Where("id = ? AND version = ?", line.ID, stored).
		Updates(map[string]interface{}{
			"user_id":    line.UserID,
			"session_id": line.SessionID,
			"quantity":   line.Quantity,
			"unit_price": line.UnitPrice,
			"version":    line.Version,
			"updated_at": line.UpdatedAt,
		})
	if result.Error != nil {
		// a reassignment can collide with the target owner's unique index
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	line.MarkStored()
	return nil
}

// Delete deletes a cart line
func (r *GormCartLineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&cart.CartLine{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteAllForOwner deletes every line belonging to an owner
func (r *GormCartLineRepository) DeleteAllForOwner(ctx context.Context, owner cart.Owner) error {
	query, err := r.ownerQuery(ctx, owner)
	if err != nil {
		return err
	}
	return query.Delete(&cart.CartLine{}).Error
}

// CountForOwner counts the lines belonging to an owner
func (r *GormCartLineRepository) CountForOwner(ctx context.Context, owner cart.Owner) (int64, error) {
	query, err := r.ownerQuery(ctx, owner)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := query.Model(&cart.CartLine{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityForOwner sums the quantities over an owner's lines
func (r *GormCartLineRepository) SumQuantityForOwner(ctx context.Context, owner cart.Owner) (int64, error) {
	query, err := r.ownerQuery(ctx, owner)
	if err != nil {
		return 0, err
	}

	var sum int64
	if err := query.Model(&cart.CartLine{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *GormCartLineRepository) ownerQuery(ctx context.Context, owner cart.Owner) (*gorm.DB, error) {
	if userID, ok := owner.UserID(); ok {
		return r.db.WithContext(ctx).Where("user_id = ?", userID), nil
	}
	if sessionID, ok := owner.SessionID(); ok {
		return r.db.WithContext(ctx).Where("session_id = ?", sessionID), nil
	}
	return nil, shared.ErrInvalidOwner
}

var _ cart.CartLineRepository = (*GormCartLineRepository)(nil)
