package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BatchListFilter represents filter options for the batch list
type BatchListFilter struct {
	ProductID       *uuid.UUID `form:"product_id"`
	PurchaseOrderID *uuid.UUID `form:"purchase_order_id"`
	BatchNumber     string     `form:"batch_number"`
	ExpiringInDays  *int       `form:"expiring_in_days" binding:"omitempty,min=1,max=3650"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string     `form:"order_by"`
	OrderDir        string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchResponse represents an inventory batch in API responses
type BatchResponse struct {
	ID              uuid.UUID        `json:"id"`
	BatchNumber     string           `json:"batch_number"`
	ProductID       uuid.UUID        `json:"product_id"`
	ProductName     string           `json:"product_name"`
	ProductCode     string           `json:"product_code"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        decimal.Decimal  `json:"unit_cost"`
	MRP             *decimal.Decimal `json:"mrp,omitempty"`
	SellingPrice    *decimal.Decimal `json:"selling_price,omitempty"`
	ExpiryDate      time.Time        `json:"expiry_date"`
	DaysUntilExpiry int              `json:"days_until_expiry"`
	IsExpired       bool             `json:"is_expired"`
	SupplierID      uuid.UUID        `json:"supplier_id"`
	SupplierName    string           `json:"supplier_name"`
	PurchaseOrderID uuid.UUID        `json:"purchase_order_id"`
	PONumber        string           `json:"po_number"`
	ReceivedAt      time.Time        `json:"received_at"`
}

// ToBatchResponse converts a domain batch to a response DTO
func ToBatchResponse(batch *inventory.InventoryBatch) BatchResponse {
	return BatchResponse{
		ID:              batch.ID,
		BatchNumber:     batch.BatchNumber,
		ProductID:       batch.ProductID,
		ProductName:     batch.ProductName,
		ProductCode:     batch.ProductCode,
		Quantity:        batch.Quantity,
		UnitCost:        batch.UnitCost,
		MRP:             batch.MRP,
		SellingPrice:    batch.SellingPrice,
		ExpiryDate:      batch.ExpiryDate,
		DaysUntilExpiry: batch.DaysUntilExpiry(),
		IsExpired:       batch.IsExpired(),
		SupplierID:      batch.SupplierID,
		SupplierName:    batch.SupplierName,
		PurchaseOrderID: batch.PurchaseOrderID,
		PONumber:        batch.PONumber,
		ReceivedAt:      batch.ReceivedAt,
	}
}

// BatchService handles inventory batch read operations
// Batches are written only by the purchase order receiving transaction
type BatchService struct {
	batchRepo inventory.BatchRepository
}

// NewBatchService creates a new BatchService
func NewBatchService(batchRepo inventory.BatchRepository) *BatchService {
	return &BatchService{batchRepo: batchRepo}
}

// GetByID retrieves a batch by ID
func (s *BatchService) GetByID(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// List retrieves batches with filtering and pagination
// The expiring_in_days filter short-circuits to the expiry query and ignores
// pagination (the expiring set is expected to be small)
func (s *BatchService) List(ctx context.Context, filter BatchListFilter) (*shared.Paginated[BatchResponse], error) {
	if filter.ExpiringInDays != nil {
		batches, err := s.batchRepo.FindExpiringWithin(ctx, *filter.ExpiringInDays)
		if err != nil {
			return nil, err
		}
		result := shared.NewPaginated(toBatchResponses(batches), int64(len(batches)), 1, max(len(batches), 1))
		return &result, nil
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.ProductID != nil {
		domainFilter.Filters["product_id"] = *filter.ProductID
	}
	if filter.PurchaseOrderID != nil {
		domainFilter.Filters["purchase_order_id"] = *filter.PurchaseOrderID
	}
	if filter.BatchNumber != "" {
		domainFilter.Filters["batch_number"] = filter.BatchNumber
	}

	batches, err := s.batchRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.batchRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toBatchResponses(batches), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListByProduct retrieves all batches of a product, earliest expiry first
func (s *BatchService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toBatchResponses(batches), nil
}

// ListByPurchaseOrder retrieves all batches received against a purchase order
func (s *BatchService) ListByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindByPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toBatchResponses(batches), nil
}

func toBatchResponses(batches []inventory.InventoryBatch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i])
	}
	return responses
}
