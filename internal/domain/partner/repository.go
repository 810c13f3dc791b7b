package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/shared"
)

// SupplierRepository defines the persistence contract for suppliers
type SupplierRepository interface {
	// FindByID finds a supplier by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByCode finds a supplier by its unique code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// FindAll returns suppliers matching the filter with pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Count returns the number of suppliers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// ExistsByCode checks whether a supplier code is already taken
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
