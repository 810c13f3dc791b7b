package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                      `json:"supplier_id" binding:"required"`
	OrderDate    *time.Time                     `json:"order_date"`
	ExpectedDate *time.Time                     `json:"expected_date"`
	Items        []CreatePurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Notes        string                         `json:"notes" binding:"max=2000"`
}

// CreatePurchaseOrderItemInput represents an item in the create order request
// Product name, code and tax rate are snapshotted from the catalog; unit
// price defaults to the product's default cost when omitted
type CreatePurchaseOrderItemInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// UpdatePurchaseOrderRequest represents a request to update an order
// Expected date and notes follow the aggregate's edit windows; payment status
// is accepted from the payment subsystem at any non-terminal point
type UpdatePurchaseOrderRequest struct {
	ExpectedDate  *time.Time `json:"expected_date"`
	Notes         *string    `json:"notes" binding:"omitempty,max=2000"`
	PaymentStatus *string    `json:"payment_status" binding:"omitempty,max=30"`
}

// ReceiveItemInput represents a single line in a receive request
type ReceiveItemInput struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	BatchNumber  string           `json:"batch_number" binding:"max=100"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
	MRP          *decimal.Decimal `json:"mrp"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

// ReceivePurchaseOrderRequest represents a request to receive goods
type ReceivePurchaseOrderRequest struct {
	Items []ReceiveItemInput `json:"items" binding:"required,min=1,dive"`
}

// CancelPurchaseOrderRequest represents a request to cancel an order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OverrideStatusRequest represents an administrative status override
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=sent partially_received received cancelled"`
}

// PurchaseOrderListFilter represents filter options for the order list
type PurchaseOrderListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     *string    `form:"status" binding:"omitempty,oneof=draft sent partially_received received cancelled"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID              uuid.UUID                   `json:"id"`
	PONumber        string                      `json:"po_number"`
	SupplierID      uuid.UUID                   `json:"supplier_id"`
	SupplierName    string                      `json:"supplier_name"`
	OrderDate       time.Time                   `json:"order_date"`
	ExpectedDate    *time.Time                  `json:"expected_date,omitempty"`
	Items           []PurchaseOrderItemResponse `json:"items"`
	ItemCount       int                         `json:"item_count"`
	TotalAmount     decimal.Decimal             `json:"total_amount"`
	Status          string                      `json:"status"`
	PaymentStatus   string                      `json:"payment_status"`
	ReceiveProgress decimal.Decimal             `json:"receive_progress"`
	Notes           string                      `json:"notes,omitempty"`
	SentAt          *time.Time                  `json:"sent_at,omitempty"`
	ReceivedAt      *time.Time                  `json:"received_at,omitempty"`
	CancelledAt     *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason    string                      `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	Version         int                         `json:"version"`
}

// PurchaseOrderListItemResponse represents an order in list responses
type PurchaseOrderListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	PONumber        string          `json:"po_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	OrderDate       time.Time       `json:"order_date"`
	ExpectedDate    *time.Time      `json:"expected_date,omitempty"`
	ItemCount       int             `json:"item_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	ReceiveProgress decimal.Decimal `json:"receive_progress"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PurchaseOrderItemResponse represents a line item in API responses
type PurchaseOrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductCode       string          `json:"product_code"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TaxPercentage     decimal.Decimal `json:"tax_percentage"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
}

// SendResultResponse represents the outcome of a dispatch attempt
// Dispatched=false with a retryable message means the order is sent but the
// supplier notification failed; resending is safe
type SendResultResponse struct {
	Order      PurchaseOrderResponse `json:"order"`
	Dispatched bool                  `json:"dispatched"`
	Message    string                `json:"message,omitempty"`
}

// ReceivedBatchResponse represents a created inventory batch in the receive result
type ReceivedBatchResponse struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExpiryDate  time.Time       `json:"expiry_date"`
}

// ReceiveResultResponse represents the outcome of a receive operation
type ReceiveResultResponse struct {
	Order           PurchaseOrderResponse   `json:"order"`
	Batches         []ReceivedBatchResponse `json:"batches"`
	IsFullyReceived bool                    `json:"is_fully_received"`
}

// PurchaseOrderStatusSummary represents order counts per status
type PurchaseOrderStatusSummary struct {
	Draft             int64 `json:"draft"`
	Sent              int64 `json:"sent"`
	PartiallyReceived int64 `json:"partially_received"`
	Received          int64 `json:"received"`
	Cancelled         int64 `json:"cancelled"`
	Total             int64 `json:"total"`
}

// ==================== Mappers ====================

// ToPurchaseOrderResponse converts a domain order to a response DTO
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToPurchaseOrderItemResponse(&order.Items[i])
	}
	return PurchaseOrderResponse{
		ID:              order.ID,
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		OrderDate:       order.OrderDate,
		ExpectedDate:    order.ExpectedDate,
		Items:           items,
		ItemCount:       order.ItemCount(),
		TotalAmount:     order.TotalAmount,
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus,
		ReceiveProgress: order.ReceiveProgress(),
		Notes:           order.Notes,
		SentAt:          order.SentAt,
		ReceivedAt:      order.ReceivedAt,
		CancelledAt:     order.CancelledAt,
		CancelReason:    order.CancelReason,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Version:         order.GetVersion(),
	}
}

// ToPurchaseOrderItemResponse converts a domain item to a response DTO
func ToPurchaseOrderItemResponse(item *procurement.PurchaseOrderItem) PurchaseOrderItemResponse {
	return PurchaseOrderItemResponse{
		ID:                item.ID,
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		ProductCode:       item.ProductCode,
		Quantity:          item.Quantity,
		ReceivedQuantity:  item.ReceivedQuantity,
		RemainingQuantity: item.RemainingQuantity(),
		UnitPrice:         item.UnitPrice,
		TaxPercentage:     item.TaxPercentage,
		TaxAmount:         item.TaxAmount,
		Total:             item.Total,
	}
}

// ToPurchaseOrderListItemResponse converts a domain order to a list item DTO
func ToPurchaseOrderListItemResponse(order *procurement.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:              order.ID,
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		OrderDate:       order.OrderDate,
		ExpectedDate:    order.ExpectedDate,
		ItemCount:       order.ItemCount(),
		TotalAmount:     order.TotalAmount,
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus,
		ReceiveProgress: order.ReceiveProgress(),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// ToPurchaseOrderListItemResponses converts a slice of domain orders
func ToPurchaseOrderListItemResponses(orders []procurement.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderListItemResponse(&orders[i])
	}
	return responses
}

// ToReceivedBatchResponses converts created inventory batches to response DTOs
func ToReceivedBatchResponses(batches []*inventory.InventoryBatch) []ReceivedBatchResponse {
	responses := make([]ReceivedBatchResponse, len(batches))
	for i, b := range batches {
		responses[i] = ReceivedBatchResponse{
			BatchID:     b.ID,
			ProductID:   b.ProductID,
			ProductName: b.ProductName,
			BatchNumber: b.BatchNumber,
			Quantity:    b.Quantity,
			ExpiryDate:  b.ExpiryDate,
		}
	}
	return responses
}
