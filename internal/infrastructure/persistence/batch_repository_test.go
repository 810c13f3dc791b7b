package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, productID, orderID uuid.UUID, batchNumber string, expiryDays int) *inventory.InventoryBatch {
	t.Helper()
	batch, err := inventory.NewInventoryBatch(inventory.NewBatchParams{
		BatchNumber:     batchNumber,
		ProductID:       productID,
		ProductName:     "Paracetamol 500mg",
		ProductCode:     "PARA-500",
		Quantity:        decimal.NewFromInt(50),
		UnitCost:        decimal.NewFromFloat(12.50),
		ExpiryDate:      time.Now().AddDate(0, 0, expiryDays),
		SupplierID:      uuid.New(),
		SupplierName:    "MedSupply Distributors",
		PurchaseOrderID: orderID,
		PONumber:        "PO-2026-00001",
	})
	require.NoError(t, err)
	return batch
}

func TestGormBatchRepository(t *testing.T) {
	db := setupPurchaseOrderTestDB(t)
	repo := NewGormBatchRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	orderID := uuid.New()

	near := newTestBatch(t, productID, orderID, "B-NEAR", 20)
	far := newTestBatch(t, productID, orderID, "B-FAR", 400)
	other := newTestBatch(t, uuid.New(), uuid.New(), "B-OTHER", 100)
	for _, b := range []*inventory.InventoryBatch{far, near, other} {
		require.NoError(t, db.Create(b).Error)
	}

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, near.ID)
		require.NoError(t, err)
		assert.Equal(t, "B-NEAR", found.BatchNumber)
		assert.Equal(t, "12.5", found.UnitCost.String())
	})

	t.Run("finds by product ordered by expiry", func(t *testing.T) {
		batches, err := repo.FindByProduct(ctx, productID)
		require.NoError(t, err)
		require.Len(t, batches, 2)
		assert.Equal(t, "B-NEAR", batches[0].BatchNumber)
		assert.Equal(t, "B-FAR", batches[1].BatchNumber)
	})

	t.Run("finds by purchase order", func(t *testing.T) {
		batches, err := repo.FindByPurchaseOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, batches, 2)
	})

	t.Run("finds expiring within window", func(t *testing.T) {
		batches, err := repo.FindExpiringWithin(ctx, 30)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, "B-NEAR", batches[0].BatchNumber)

		batches, err = repo.FindExpiringWithin(ctx, 500)
		require.NoError(t, err)
		assert.Len(t, batches, 3)
	})

	t.Run("filters by batch number", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["batch_number"] = "B-OTHER"
		batches, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, batches, 1)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
