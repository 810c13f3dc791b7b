package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for purchase order events
const (
	EventTypePurchaseOrderCreated          = "procurement.purchase_order.created"
	EventTypePurchaseOrderSent             = "procurement.purchase_order.sent"
	EventTypePurchaseOrderReceived         = "procurement.purchase_order.received"
	EventTypePurchaseOrderCancelled        = "procurement.purchase_order.cancelled"
	EventTypePurchaseOrderStatusOverridden = "procurement.purchase_order.status_overridden"
)

const aggregateTypePurchaseOrder = "PurchaseOrder"

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber     string    `json:"po_number"`
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
	OrderDate    time.Time `json:"order_date"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, aggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		OrderDate:       order.OrderDate,
	}
}

// PurchaseOrderSentEvent is raised when an order transitions to sent
type PurchaseOrderSentEvent struct {
	shared.BaseDomainEvent
	PONumber    string          `json:"po_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewPurchaseOrderSentEvent creates a new PurchaseOrderSentEvent
func NewPurchaseOrderSentEvent(order *PurchaseOrder) *PurchaseOrderSentEvent {
	return &PurchaseOrderSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSent, aggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		TotalAmount:     order.TotalAmount,
		ItemCount:       len(order.Items),
	}
}

// ReceivedEventLine is one applied receipt line carried on the received event
type ReceivedEventLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
}

// PurchaseOrderReceivedEvent is raised when goods are received against an
// order; IsComplete distinguishes full from partial receipt
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	PONumber   string              `json:"po_number"`
	SupplierID uuid.UUID           `json:"supplier_id"`
	IsComplete bool                `json:"is_complete"`
	Lines      []ReceivedEventLine `json:"lines"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder, lines []ReceiptLine) *PurchaseOrderReceivedEvent {
	eventLines := make([]ReceivedEventLine, 0, len(lines))
	for _, l := range lines {
		eventLines = append(eventLines, ReceivedEventLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, aggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		SupplierID:      order.SupplierID,
		IsComplete:      order.Status == PurchaseOrderStatusReceived,
		Lines:           eventLines,
	}
}

// PurchaseOrderCancelledEvent is raised when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	PONumber string `json:"po_number"`
	Reason   string `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, aggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		Reason:          order.CancelReason,
	}
}

// PurchaseOrderStatusOverriddenEvent is raised when an administrator sets the
// status directly, bypassing the transition guards
type PurchaseOrderStatusOverriddenEvent struct {
	shared.BaseDomainEvent
	PONumber       string              `json:"po_number"`
	PreviousStatus PurchaseOrderStatus `json:"previous_status"`
	NewStatus      PurchaseOrderStatus `json:"new_status"`
}

// NewPurchaseOrderStatusOverriddenEvent creates a new PurchaseOrderStatusOverriddenEvent
func NewPurchaseOrderStatusOverriddenEvent(order *PurchaseOrder, previous PurchaseOrderStatus) *PurchaseOrderStatusOverriddenEvent {
	return &PurchaseOrderStatusOverriddenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusOverridden, aggregateTypePurchaseOrder, order.ID),
		PONumber:        order.PONumber,
		PreviousStatus:  previous,
		NewStatus:       order.Status,
	}
}
