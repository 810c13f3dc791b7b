package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	procurementapp "github.com/pharmakart/backend/internal/application/procurement"
	"github.com/pharmakart/backend/internal/domain/catalog"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/pharmakart/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurchaseOrderRepository implements procurement.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, poNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountByStatus(ctx context.Context, status procurement.PurchaseOrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveReceiptWithLock(ctx context.Context, order *procurement.PurchaseOrder, batches []*inventory.InventoryBatch) error {
	args := m.Called(ctx, order, batches)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) ExistsByNumber(ctx context.Context, poNumber string) (bool, error) {
	args := m.Called(ctx, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) NextSequenceForYear(ctx context.Context, year int) (int64, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(int64), args.Error(1)
}

// MockSupplierRepository implements partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository implements catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type orderHandlerFixture struct {
	orderRepo    *MockPurchaseOrderRepository
	supplierRepo *MockSupplierRepository
	productRepo  *MockProductRepository
	engine       *gin.Engine
}

func newOrderHandlerFixture(t *testing.T) *orderHandlerFixture {
	t.Helper()
	f := &orderHandlerFixture{
		orderRepo:    new(MockPurchaseOrderRepository),
		supplierRepo: new(MockSupplierRepository),
		productRepo:  new(MockProductRepository),
	}

	service := procurementapp.NewPurchaseOrderService(f.orderRepo, f.supplierRepo, f.productRepo)
	h := NewPurchaseOrderHandler(service)

	f.engine = gin.New()
	orders := f.engine.Group("/procurement/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("/:id", h.GetByID)
	orders.GET("", h.List)
	orders.POST("/:id/receive", h.Receive)
	orders.POST("/:id/cancel", h.Cancel)
	return f
}

func (f *orderHandlerFixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func activeHandlerSupplier(t *testing.T) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier("SUP-001", "MedSupply Distributors")
	require.NoError(t, err)
	return supplier
}

func sentHandlerOrder(t *testing.T, productID uuid.UUID) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder("PO-2026-00001", uuid.New(), "MedSupply Distributors", time.Now())
	require.NoError(t, err)
	_, err = order.AddItem(productID, "Paracetamol 500mg", "PARA-500",
		decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, order.MarkSent())
	return order
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	t.Run("creates order and returns 201", func(t *testing.T) {
		f := newOrderHandlerFixture(t)
		supplier := activeHandlerSupplier(t)
		product := catalog.Product{
			BaseEntity:    shared.NewBaseEntity(),
			SKU:           "PARA-500",
			Name:          "Paracetamol 500mg",
			TaxPercentage: decimal.NewFromInt(12),
			DefaultCost:   decimal.RequireFromString("85.50"),
			Status:        catalog.ProductStatusActive,
		}

		f.supplierRepo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
		f.productRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{product}, nil)
		f.orderRepo.On("NextSequenceForYear", mock.Anything, time.Now().Year()).Return(int64(42), nil)
		f.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		w := f.request(t, http.MethodPost, "/procurement/purchase-orders", gin.H{
			"supplier_id": supplier.ID,
			"items": []gin.H{
				{"product_id": product.ID, "quantity": "10"},
			},
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Success bool                                  `json:"success"`
			Data    procurementapp.PurchaseOrderResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, fmt.Sprintf("PO-%d-00042", time.Now().Year()), resp.Data.PONumber)
		assert.Equal(t, "draft", resp.Data.Status)
		assert.Equal(t, "957.60", resp.Data.TotalAmount.StringFixed(2))
	})

	t.Run("rejects order without items", func(t *testing.T) {
		f := newOrderHandlerFixture(t)

		w := f.request(t, http.MethodPost, "/procurement/purchase-orders", gin.H{
			"supplier_id": uuid.New(),
			"items":       []gin.H{},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		f := newOrderHandlerFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/procurement/purchase-orders", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseOrderHandler_GetByID(t *testing.T) {
	t.Run("returns 404 for unknown order", func(t *testing.T) {
		f := newOrderHandlerFixture(t)
		orderID := uuid.New()
		f.orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		w := f.request(t, http.MethodGet, "/procurement/purchase-orders/"+orderID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("returns 400 for malformed ID", func(t *testing.T) {
		f := newOrderHandlerFixture(t)

		w := f.request(t, http.MethodGet, "/procurement/purchase-orders/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPurchaseOrderHandler_List(t *testing.T) {
	f := newOrderHandlerFixture(t)
	productID := uuid.New()
	order := sentHandlerOrder(t, productID)

	f.orderRepo.On("FindAll", mock.Anything, mock.Anything).Return([]procurement.PurchaseOrder{*order}, nil)
	f.orderRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	w := f.request(t, http.MethodGet, "/procurement/purchase-orders?status=sent&page=1&page_size=20", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestPurchaseOrderHandler_Receive(t *testing.T) {
	t.Run("over-receipt returns 422 and persists nothing", func(t *testing.T) {
		f := newOrderHandlerFixture(t)
		productID := uuid.New()
		order := sentHandlerOrder(t, productID)
		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		expiry := time.Now().AddDate(1, 0, 0)
		w := f.request(t, http.MethodPost, "/procurement/purchase-orders/"+order.ID.String()+"/receive", gin.H{
			"items": []gin.H{
				{
					"product_id":   productID,
					"quantity":     "11",
					"batch_number": "BATCH-001",
					"expiry_date":  expiry,
				},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "QUANTITY_EXCEEDED", resp.Error.Code)
		f.orderRepo.AssertNotCalled(t, "SaveReceiptWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale version returns 409", func(t *testing.T) {
		f := newOrderHandlerFixture(t)
		productID := uuid.New()
		order := sentHandlerOrder(t, productID)
		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("SaveReceiptWithLock", mock.Anything, mock.Anything, mock.Anything).
			Return(shared.ErrConcurrencyConflict)

		expiry := time.Now().AddDate(1, 0, 0)
		w := f.request(t, http.MethodPost, "/procurement/purchase-orders/"+order.ID.String()+"/receive", gin.H{
			"items": []gin.H{
				{
					"product_id":   productID,
					"quantity":     "4",
					"batch_number": "BATCH-001",
					"expiry_date":  expiry,
				},
			},
		})

		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func TestPurchaseOrderHandler_Cancel(t *testing.T) {
	t.Run("cancelling a received order returns 422", func(t *testing.T) {
		f := newOrderHandlerFixture(t)
		productID := uuid.New()
		order := sentHandlerOrder(t, productID)
		expiry := time.Now().AddDate(1, 0, 0)
		_, err := order.Receive([]procurement.ReceiptEntry{
			{ProductID: productID, Quantity: decimal.NewFromInt(10), BatchNumber: "BATCH-001", ExpiryDate: &expiry},
		})
		require.NoError(t, err)
		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		w := f.request(t, http.MethodPost, "/procurement/purchase-orders/"+order.ID.String()+"/cancel", gin.H{
			"reason": "Supplier cannot fulfil",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})

	t.Run("missing reason returns 400", func(t *testing.T) {
		f := newOrderHandlerFixture(t)

		w := f.request(t, http.MethodPost, "/procurement/purchase-orders/"+uuid.New().String()+"/cancel", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
