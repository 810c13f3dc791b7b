package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSupplierTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE suppliers (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			contact_name TEXT,
			phone TEXT,
			email TEXT,
			address TEXT,
			gstin TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			notes TEXT
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormSupplierRepository(t *testing.T) {
	db := setupSupplierTestDB(t)
	repo := NewGormSupplierRepository(db)
	ctx := context.Background()

	supplier, err := partner.NewSupplier("SUP-001", "MedSupply Distributors")
	require.NoError(t, err)
	supplier.UpdateContact("Ravi Kumar", "+91-9876543210", "orders@medsupply.example", "12 MG Road, Bengaluru")
	require.NoError(t, repo.Save(ctx, supplier))

	t.Run("round trips a supplier", func(t *testing.T) {
		found, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, "SUP-001", found.Code)
		assert.True(t, found.CanDispatch())
	})

	t.Run("finds by code", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "SUP-001")
		require.NoError(t, err)
		assert.Equal(t, supplier.ID, found.ID)

		_, err = repo.FindByCode(ctx, "SUP-404")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("exists by code", func(t *testing.T) {
		exists, err := repo.ExistsByCode(ctx, "SUP-001")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("filters by status and search", func(t *testing.T) {
		inactive, err := partner.NewSupplier("SUP-002", "Cipla Distributors")
		require.NoError(t, err)
		inactive.Deactivate()
		require.NoError(t, repo.Save(ctx, inactive))

		filter := shared.DefaultFilter()
		filter.Filters["status"] = "active"
		suppliers, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, suppliers, 1)
		assert.Equal(t, "SUP-001", suppliers[0].Code)

		filter = shared.DefaultFilter()
		filter.Search = "cipla"
		suppliers, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, suppliers, 1)
		assert.Equal(t, "SUP-002", suppliers[0].Code)

		count, err := repo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("updates in place", func(t *testing.T) {
		supplier.Deactivate()
		require.NoError(t, repo.Save(ctx, supplier))

		found, err := repo.FindByID(ctx, supplier.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive())
	})

	t.Run("not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
