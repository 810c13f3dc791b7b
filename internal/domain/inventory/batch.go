package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryBatch represents a received stock batch
// Batches are immutable records of physical receipt: quantity, pricing and
// expiry are fixed at creation and never updated through this aggregate.
// Stock depletion is tracked elsewhere (sales/fulfilment).
type InventoryBatch struct {
	shared.BaseEntity
	BatchNumber     string           `gorm:"type:varchar(100);not null;index"`
	ProductID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductName     string           `gorm:"type:varchar(200);not null"`
	ProductCode     string           `gorm:"type:varchar(50);not null"`
	Quantity        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitCost        decimal.Decimal  `gorm:"type:decimal(18,4);not null"` // Purchase unit price snapshot
	MRP             *decimal.Decimal `gorm:"type:decimal(18,2)"`          // Maximum retail price printed on the batch
	SellingPrice    *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ExpiryDate      time.Time        `gorm:"not null;index"`
	SupplierID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	SupplierName    string           `gorm:"type:varchar(200);not null"`
	PurchaseOrderID uuid.UUID        `gorm:"type:uuid;not null;index"`
	PONumber        string           `gorm:"type:varchar(50);not null;index"`
	ReceivedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryBatch) TableName() string {
	return "inventory_batches"
}

// NewBatchParams carries the inputs for a new inventory batch
type NewBatchParams struct {
	BatchNumber     string
	ProductID       uuid.UUID
	ProductName     string
	ProductCode     string
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	MRP             *decimal.Decimal
	SellingPrice    *decimal.Decimal
	ExpiryDate      time.Time
	SupplierID      uuid.UUID
	SupplierName    string
	PurchaseOrderID uuid.UUID
	PONumber        string
}

// NewInventoryBatch creates a new immutable inventory batch record
func NewInventoryBatch(p NewBatchParams) (*InventoryBatch, error) {
	if p.BatchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if p.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if p.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if p.UnitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if p.ExpiryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "Expiry date is required")
	}
	if p.MRP != nil && p.MRP.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MRP", "MRP cannot be negative")
	}
	if p.SellingPrice != nil && p.SellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}

	return &InventoryBatch{
		BaseEntity:      shared.NewBaseEntity(),
		BatchNumber:     p.BatchNumber,
		ProductID:       p.ProductID,
		ProductName:     p.ProductName,
		ProductCode:     p.ProductCode,
		Quantity:        p.Quantity,
		UnitCost:        p.UnitCost,
		MRP:             p.MRP,
		SellingPrice:    p.SellingPrice,
		ExpiryDate:      p.ExpiryDate,
		SupplierID:      p.SupplierID,
		SupplierName:    p.SupplierName,
		PurchaseOrderID: p.PurchaseOrderID,
		PONumber:        p.PONumber,
		ReceivedAt:      time.Now(),
	}, nil
}

// IsExpired returns true if the batch has passed its expiry date
func (b *InventoryBatch) IsExpired() bool {
	return time.Now().After(b.ExpiryDate)
}

// DaysUntilExpiry returns the number of whole days until expiry
// Negative for already-expired batches
func (b *InventoryBatch) DaysUntilExpiry() int {
	return int(time.Until(b.ExpiryDate).Hours() / 24)
}

// ExpiresWithin returns true if the batch expires within the given number of days
func (b *InventoryBatch) ExpiresWithin(days int) bool {
	return !b.IsExpired() && b.DaysUntilExpiry() <= days
}

// TotalCost returns quantity x unit cost, rounded to 2dp
func (b *InventoryBatch) TotalCost() decimal.Decimal {
	return b.Quantity.Mul(b.UnitCost).Round(2)
}
