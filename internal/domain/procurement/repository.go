package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the persistence contract for purchase orders
type PurchaseOrderRepository interface {
	// FindByID finds an order by ID, with its items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByNumber finds an order by PO number
	FindByNumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)

	// FindAll returns orders matching the filter with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus returns the number of orders in the given status
	CountByStatus(ctx context.Context, status PurchaseOrderStatus) (int64, error)

	// Save creates or updates an order without a version check
	// Used for creation and draft edits
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an order with an optimistic version check
	// Returns ErrConcurrencyConflict if the stored version has moved on
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// SaveReceiptWithLock persists a receiving operation atomically: the
	// version-checked order update, its item received-quantity updates and
	// the new inventory batches commit or roll back together
	SaveReceiptWithLock(ctx context.Context, order *PurchaseOrder, batches []*inventory.InventoryBatch) error

	// ExistsByNumber checks whether a PO number is already taken
	ExistsByNumber(ctx context.Context, poNumber string) (bool, error)

	// NextSequenceForYear returns max(sequence)+1 among stored PO numbers of
	// the given year; fallback source when no dedicated allocator is wired
	NextSequenceForYear(ctx context.Context, year int) (int64, error)
}

// OrderNumberAllocator hands out monotonically increasing per-year sequence
// numbers for PO number generation
type OrderNumberAllocator interface {
	// NextSequence returns the next sequence number for the given year
	NextSequence(ctx context.Context, year int) (int64, error)
}
