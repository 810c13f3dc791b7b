package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository is a GORM implementation of PurchaseOrderRepository
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds an order by ID with its items preloaded
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds an order by PO number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "po_number = ?", poNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns orders matching the filter with pagination
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns the number of orders in the given status
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context, status procurement.PurchaseOrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&procurement.PurchaseOrder{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an order without a version check
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		return r.saveItems(tx, order)
	})
}

// SaveWithLock updates an order with an optimistic version check
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateWithVersionCheck(tx, order); err != nil {
			return err
		}
		return r.saveItems(tx, order)
	})
}

// SaveReceiptWithLock persists a receiving operation atomically: the
// version-checked order update, the item received-quantity updates and the
// new inventory batch rows commit or roll back together
func (r *GormPurchaseOrderRepository) SaveReceiptWithLock(ctx context.Context, order *procurement.PurchaseOrder, batches []*inventory.InventoryBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateWithVersionCheck(tx, order); err != nil {
			return err
		}
		if err := r.saveItems(tx, order); err != nil {
			return err
		}
		for _, batch := range batches {
			if err := tx.Create(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ExistsByNumber checks whether a PO number is already taken
func (r *GormPurchaseOrderRepository) ExistsByNumber(ctx context.Context, poNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&procurement.PurchaseOrder{}).
		Where("po_number = ?", poNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSequenceForYear returns max(sequence)+1 among stored PO numbers of the
// given year. Concurrent callers can race here; the unique index on
// po_number turns the loser's insert into an error rather than a duplicate.
func (r *GormPurchaseOrderRepository) NextSequenceForYear(ctx context.Context, year int) (int64, error) {
	prefix := fmt.Sprintf("PO-%d-", year)

	// Sequences are zero-padded to five digits but can grow past 99999;
	// ordering by length first keeps the comparison numeric
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&procurement.PurchaseOrder{}).
		Where("po_number LIKE ?", prefix+"%").
		Order("LENGTH(po_number) DESC, po_number DESC").
		Limit(1).
		Pluck("po_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	if len(numbers) == 0 {
		return 1, nil
	}

	latest := numbers[0]
	seq, err := strconv.ParseInt(strings.TrimPrefix(latest, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed po number %q: %w", latest, err)
	}
	return seq + 1, nil
}

// updateWithVersionCheck updates the order row guarded by the stored version
func (r *GormPurchaseOrderRepository) updateWithVersionCheck(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	var currentVersion int
	err := tx.Model(&procurement.PurchaseOrder{}).
		Where("id = ?", order.ID).
		Select("version").
		Scan(&currentVersion).Error
	if err != nil {
		return err
	}
	if currentVersion == 0 {
		return shared.ErrNotFound
	}
	if currentVersion != order.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
	}

	order.Version++
	order.UpdatedAt = time.Now()

	result := tx.Model(&procurement.PurchaseOrder{}).
		Where("id = ? AND version = ?", order.ID, currentVersion).
		Updates(map[string]interface{}{
			"supplier_id":    order.SupplierID,
			"supplier_name":  order.SupplierName,
			"order_date":     order.OrderDate,
			"expected_date":  order.ExpectedDate,
			"total_amount":   order.TotalAmount,
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"notes":          order.Notes,
			"sent_at":        order.SentAt,
			"received_at":    order.ReceivedAt,
			"cancelled_at":   order.CancelledAt,
			"cancel_reason":  order.CancelReason,
			"version":        order.Version,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
	}
	return nil
}

// saveItems reconciles the stored line items with the aggregate's items
func (r *GormPurchaseOrderRepository) saveItems(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&procurement.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&procurement.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies list filters without pagination or ordering
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(po_number) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", v)
	}
	if v, ok := filter.Filters["start_date"]; ok {
		query = query.Where("order_date >= ?", v)
	}
	if v, ok := filter.Filters["end_date"]; ok {
		query = query.Where("order_date <= ?", v)
	}
	return query
}
