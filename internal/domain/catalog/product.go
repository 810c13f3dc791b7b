package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the catalog status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a catalog product referenced by procurement
// The catalog is owned by the storefront; procurement reads it for line-item
// snapshots (name, code, tax rate) and never mutates it
type Product struct {
	shared.BaseEntity
	SKU                  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                 string          `gorm:"type:varchar(200);not null"`
	GenericName          string          `gorm:"type:varchar(200)"`
	Manufacturer         string          `gorm:"type:varchar(200)"`
	HSNCode              string          `gorm:"type:varchar(10)"` // Indian GST classification code
	TaxPercentage        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DefaultCost          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RequiresPrescription bool            `gorm:"not null;default:false"`
	Status               ProductStatus   `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// IsActive returns true if the product can appear on new purchase orders
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ProductRepository provides read access to the product catalog
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by ID in one round trip
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindBySKU finds a product by SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll returns products matching the filter with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count returns the number of products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
