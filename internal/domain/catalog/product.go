package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the availability status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a sellable product in the catalog.
// The cart subsystem reads it as the source of truth for price,
// sale price, stock and availability.
type Product struct {
	shared.BaseAggregateRoot
	SKU         string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string           `gorm:"type:varchar(200);not null"`
	Description string           `gorm:"type:text"`
	Price       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice   *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Stock       int              `gorm:"not null;default:0"`
	Status      ProductStatus    `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product with zero stock
func NewProduct(sku, name string, price decimal.Decimal) (*Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" || len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU must be between 1 and 50 characters")
	}
	if strings.TrimSpace(name) == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Name must be between 1 and 200 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Price:             price,
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// IsActive reports whether the product can currently be purchased
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// DisplayPrice returns the currently effective unit price:
// the sale price when it is set and lower than the base price, else the base price.
func (p *Product) DisplayPrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// HasStock reports whether at least qty units are available
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}

// SetPricing updates the base price and optional sale price
func (p *Product) SetPricing(price valueobject.Money, salePrice *valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if salePrice != nil && salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}

	oldPrice := p.Price
	p.Price = price.Amount()
	if salePrice != nil {
		amount := salePrice.Amount()
		p.SalePrice = &amount
	} else {
		p.SalePrice = nil
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// AdjustStock changes the stock level by delta. Stock never goes negative.
func (p *Product) AdjustStock(delta int) error {
	newStock := p.Stock + delta
	if newStock < 0 {
		return shared.ErrInsufficientStock
	}
	p.Stock = newStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetStock replaces the stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Activate makes the product purchasable
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate withdraws the product from sale. Existing cart lines referencing
// it are flagged by cart validation, not removed here.
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductDeactivatedEvent(p))
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if strings.TrimSpace(name) == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name must be between 1 and 200 characters")
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Snapshot is the read-only view of product state the cart engine consumes
type Snapshot struct {
	ID           uuid.UUID
	IsActive     bool
	Price        decimal.Decimal
	SalePrice    *decimal.Decimal
	DisplayPrice decimal.Decimal
	Stock        int
}

// ToSnapshot captures the current catalog truth for cart reconciliation
func (p *Product) ToSnapshot() Snapshot {
	return Snapshot{
		ID:           p.ID,
		IsActive:     p.IsActive(),
		Price:        p.Price,
		SalePrice:    p.SalePrice,
		DisplayPrice: p.DisplayPrice(),
		Stock:        p.Stock,
	}
}
