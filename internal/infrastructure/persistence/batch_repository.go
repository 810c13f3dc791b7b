package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBatchRepository is a GORM implementation of BatchRepository
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryBatch, error) {
	var batch inventory.InventoryBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindAll returns batches matching the filter with pagination
func (r *GormBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.InventoryBatch, error) {
	var batches []inventory.InventoryBatch
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.InventoryBatch{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, BatchSortFields, "received_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Count returns the number of batches matching the filter
func (r *GormBatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.InventoryBatch{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByProduct returns all batches of a product, earliest expiry first
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryBatch, error) {
	var batches []inventory.InventoryBatch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByPurchaseOrder returns all batches received against a purchase order
func (r *GormBatchRepository) FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]inventory.InventoryBatch, error) {
	var batches []inventory.InventoryBatch
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", orderID).
		Order("received_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiringWithin returns unexpired batches expiring within the given days
func (r *GormBatchRepository) FindExpiringWithin(ctx context.Context, days int) ([]inventory.InventoryBatch, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, days)

	var batches []inventory.InventoryBatch
	err := r.db.WithContext(ctx).
		Where("expiry_date > ? AND expiry_date <= ?", now, cutoff).
		Order("expiry_date ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *GormBatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters["product_id"]; ok {
		query = query.Where("product_id = ?", v)
	}
	if v, ok := filter.Filters["purchase_order_id"]; ok {
		query = query.Where("purchase_order_id = ?", v)
	}
	if v, ok := filter.Filters["batch_number"]; ok {
		query = query.Where("batch_number = ?", v)
	}
	return query
}
