package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/shared"
)

// BatchRepository provides read access to inventory batches
// Batches are created atomically alongside purchase order receipts; this
// repository never updates or deletes them
type BatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryBatch, error)

	// FindAll returns batches matching the filter with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]InventoryBatch, error)

	// Count returns the number of batches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindByProduct returns all batches of a product, earliest expiry first
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryBatch, error)

	// FindByPurchaseOrder returns all batches received against a purchase order
	FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]InventoryBatch, error)

	// FindExpiringWithin returns unexpired batches expiring within the given days
	FindExpiringWithin(ctx context.Context, days int) ([]InventoryBatch, error)
}
