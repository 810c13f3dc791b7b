package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupPurchaseOrderTestDB creates an in-memory SQLite database for testing
func setupPurchaseOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE purchase_orders (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			po_number TEXT NOT NULL UNIQUE,
			supplier_id TEXT NOT NULL,
			supplier_name TEXT NOT NULL,
			order_date DATETIME NOT NULL,
			expected_date DATETIME,
			total_amount NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			notes TEXT,
			sent_at DATETIME,
			received_at DATETIME,
			cancelled_at DATETIME,
			cancel_reason TEXT
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE purchase_order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			product_code TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			received_quantity NUMERIC NOT NULL DEFAULT 0,
			unit_price NUMERIC NOT NULL,
			tax_percentage NUMERIC NOT NULL,
			tax_amount NUMERIC NOT NULL,
			total NUMERIC NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(order_id, product_id)
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE inventory_batches (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			batch_number TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			product_code TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			unit_cost NUMERIC NOT NULL,
			mrp NUMERIC,
			selling_price NUMERIC,
			expiry_date DATETIME NOT NULL,
			supplier_id TEXT NOT NULL,
			supplier_name TEXT NOT NULL,
			purchase_order_id TEXT NOT NULL,
			po_number TEXT NOT NULL,
			received_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newStoredOrder(t *testing.T, repo *GormPurchaseOrderRepository, productID uuid.UUID) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(
		fmt.Sprintf("PO-2026-%05d", time.Now().UnixNano()%100000),
		uuid.New(), "MedSupply Distributors", time.Now())
	require.NoError(t, err)
	_, err = order.AddItem(productID, "Paracetamol 500mg", "PARA-500",
		decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

func TestGormPurchaseOrderRepository_SaveAndFind(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	order := newStoredOrder(t, repo, productID)

	t.Run("finds by id with items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.PONumber, found.PONumber)
		require.Len(t, found.Items, 1)
		assert.Equal(t, productID, found.Items[0].ProductID)
		assert.Equal(t, "1120.00", found.Items[0].Total.StringFixed(2))
		assert.Equal(t, 1, found.Version)
	})

	t.Run("finds by number", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, order.PONumber)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("exists by number", func(t *testing.T) {
		exists, err := repo.ExistsByNumber(ctx, order.PONumber)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByNumber(ctx, "PO-1999-00001")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormPurchaseOrderRepository_SaveWithLock(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	t.Run("increments version on success", func(t *testing.T) {
		order := newStoredOrder(t, repo, uuid.New())
		require.NoError(t, order.SetNotes("updated"))

		require.NoError(t, repo.SaveWithLock(ctx, order))
		assert.Equal(t, 2, order.Version)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.Version)
		assert.Equal(t, "updated", found.Notes)
	})

	t.Run("rejects stale version", func(t *testing.T) {
		order := newStoredOrder(t, repo, uuid.New())

		// Two sessions load the same version
		stale, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, order.SetNotes("first writer"))
		require.NoError(t, repo.SaveWithLock(ctx, order))

		require.NoError(t, stale.SetNotes("second writer"))
		err = repo.SaveWithLock(ctx, stale)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "first writer", found.Notes)
	})

	t.Run("returns not found for unsaved order", func(t *testing.T) {
		order, err := procurement.NewPurchaseOrder("PO-2026-99999", uuid.New(), "Supplier", time.Now())
		require.NoError(t, err)
		err = repo.SaveWithLock(ctx, order)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestGormPurchaseOrderRepository_SaveReceiptWithLock(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	receiveOrder := func(t *testing.T, order *procurement.PurchaseOrder, productID uuid.UUID, qty int64) []*inventory.InventoryBatch {
		t.Helper()
		require.NoError(t, order.MarkSent())
		require.NoError(t, repo.SaveWithLock(ctx, order))

		expiry := time.Now().AddDate(1, 0, 0)
		lines, err := order.Receive([]procurement.ReceiptEntry{
			{ProductID: productID, Quantity: decimal.NewFromInt(qty), BatchNumber: "B-1001", ExpiryDate: &expiry},
		})
		require.NoError(t, err)

		batches := make([]*inventory.InventoryBatch, 0, len(lines))
		for _, line := range lines {
			batch, err := inventory.NewInventoryBatch(inventory.NewBatchParams{
				BatchNumber:     line.BatchNumber,
				ProductID:       line.ProductID,
				ProductName:     line.ProductName,
				ProductCode:     line.ProductCode,
				Quantity:        line.Quantity,
				UnitCost:        line.UnitPrice,
				ExpiryDate:      *line.ExpiryDate,
				SupplierID:      order.SupplierID,
				SupplierName:    order.SupplierName,
				PurchaseOrderID: order.ID,
				PONumber:        order.PONumber,
			})
			require.NoError(t, err)
			batches = append(batches, batch)
		}
		return batches
	}

	t.Run("persists order, items and batches together", func(t *testing.T) {
		productID := uuid.New()
		order := newStoredOrder(t, repo, productID)
		batches := receiveOrder(t, order, productID, 4)

		require.NoError(t, repo.SaveReceiptWithLock(ctx, order, batches))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, procurement.PurchaseOrderStatusPartiallyReceived, found.Status)
		assert.Equal(t, "4", found.Items[0].ReceivedQuantity.String())
		assert.Equal(t, 3, found.Version)

		batchRepo := NewGormBatchRepository(db)
		stored, err := batchRepo.FindByPurchaseOrder(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "B-1001", stored[0].BatchNumber)
		assert.Equal(t, order.PONumber, stored[0].PONumber)
	})

	t.Run("stale version rolls back batch inserts", func(t *testing.T) {
		productID := uuid.New()
		order := newStoredOrder(t, repo, productID)
		batches := receiveOrder(t, order, productID, 4)

		// Another session wins first
		other, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.NoError(t, other.SetNotes("concurrent edit"))
		require.NoError(t, repo.SaveWithLock(ctx, other))

		err = repo.SaveReceiptWithLock(ctx, order, batches)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)

		// Nothing from the receipt must be visible
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, procurement.PurchaseOrderStatusSent, found.Status)
		assert.True(t, found.Items[0].ReceivedQuantity.IsZero())

		batchRepo := NewGormBatchRepository(db)
		stored, err := batchRepo.FindByPurchaseOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestGormPurchaseOrderRepository_NextSequenceForYear(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	seq, err := repo.NextSequenceForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	order, err := procurement.NewPurchaseOrder("PO-2026-00007", uuid.New(), "Supplier", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	seq, err = repo.NextSequenceForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(8), seq)

	// Other years are unaffected
	seq, err = repo.NextSequenceForYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	// Sequences past the five-digit padding still order numerically
	// (PO-2026-100000 must beat PO-2026-99999 despite string order)
	for _, poNumber := range []string{"PO-2026-99999", "PO-2026-100000"} {
		order, err := procurement.NewPurchaseOrder(poNumber, uuid.New(), "Supplier", time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, order))
	}
	seq, err = repo.NextSequenceForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(100001), seq)
}

func TestGormPurchaseOrderRepository_NextSequenceForYearMalformedNumber(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order, err := procurement.NewPurchaseOrder("PO-2026-LEGACY", uuid.New(), "Supplier", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	_, err = repo.NextSequenceForYear(ctx, 2026)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PO-2026-LEGACY")
}

func TestGormPurchaseOrderRepository_FindAll(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	supplierID := uuid.New()
	for i := 0; i < 3; i++ {
		order, err := procurement.NewPurchaseOrder(fmt.Sprintf("PO-2026-1000%d", i), supplierID, "MedSupply Distributors", time.Now())
		require.NoError(t, err)
		_, err = order.AddItem(uuid.New(), "Product", "P-1", decimal.NewFromInt(1), decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, order))
	}
	cancelled, err := procurement.NewPurchaseOrder("PO-2026-10009", uuid.New(), "Other Supplier", time.Now())
	require.NoError(t, err)
	require.NoError(t, cancelled.Cancel("not needed"))
	require.NoError(t, repo.Save(ctx, cancelled))

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = "draft"
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 3)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("filters by supplier", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["supplier_id"] = supplierID
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("searches by po number and supplier name", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "medsupply"
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("counts by status", func(t *testing.T) {
		count, err := repo.CountByStatus(ctx, procurement.PurchaseOrderStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
