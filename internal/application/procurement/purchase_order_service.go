package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/catalog"
	"github.com/pharmakart/backend/internal/domain/inventory"
	"github.com/pharmakart/backend/internal/domain/partner"
	"github.com/pharmakart/backend/internal/domain/procurement"
	"github.com/pharmakart/backend/internal/domain/shared"
)

// DispatchGateway delivers a purchase order to the supplier
// Implementations must be safe to retry: a dispatch failure leaves the order
// in sent status and the caller may invoke it again
type DispatchGateway interface {
	SendPurchaseOrder(ctx context.Context, order *procurement.PurchaseOrder, supplier *partner.Supplier) error
}

// DocumentRenderer renders a purchase order into a printable document
type DocumentRenderer interface {
	RenderPurchaseOrder(ctx context.Context, order *procurement.PurchaseOrder, supplier *partner.Supplier) ([]byte, error)
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      procurement.PurchaseOrderRepository
	supplierRepo   partner.SupplierRepository
	productRepo    catalog.ProductRepository
	allocator      procurement.OrderNumberAllocator
	dispatch       DispatchGateway
	renderer       DocumentRenderer
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo procurement.PurchaseOrderRepository, supplierRepo partner.SupplierRepository, productRepo catalog.ProductRepository) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNumberAllocator sets the PO number sequence allocator
// Without one, sequences fall back to a max-scan over stored PO numbers
func (s *PurchaseOrderService) SetNumberAllocator(allocator procurement.OrderNumberAllocator) {
	s.allocator = allocator
}

// SetDispatchGateway sets the supplier dispatch gateway
func (s *PurchaseOrderService) SetDispatchGateway(gateway DispatchGateway) {
	s.dispatch = gateway
}

// SetDocumentRenderer sets the purchase order document renderer
func (s *PurchaseOrderService) SetDocumentRenderer(renderer DocumentRenderer) {
	s.renderer = renderer
}

// Create creates a new purchase order in draft status
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Purchase order must contain at least one item")
	}

	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsActive() {
		return nil, shared.NewDomainError("SUPPLIER_INACTIVE", "Cannot create orders for an inactive supplier")
	}

	products, err := s.lookupProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	poNumber, err := s.generatePONumber(ctx)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order, err := procurement.NewPurchaseOrder(poNumber, supplier.ID, supplier.Name, orderDate)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Items {
		product := products[input.ProductID]
		unitPrice := product.DefaultCost
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}
		if _, err := order.AddItem(product.ID, product.Name, product.SKU, input.Quantity, unitPrice, product.TaxPercentage); err != nil {
			return nil, err
		}
	}

	if req.ExpectedDate != nil {
		if err := order.SetExpectedDate(req.ExpectedDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		if err := order.SetNotes(req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by PO number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, poNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) (*shared.Paginated[PurchaseOrderListItemResponse], error) {
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
	domainFilter.Search = filter.Search

	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToPurchaseOrderListItemResponses(orders), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update edits a purchase order's mutable fields
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.ExpectedDate != nil {
		if err := order.SetExpectedDate(req.ExpectedDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if err := order.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}
	if req.PaymentStatus != nil {
		if err := order.SetPaymentStatus(*req.PaymentStatus); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Send dispatches a purchase order to its supplier
// The status transition commits before the dispatch attempt: a gateway
// failure leaves the order sent and reports a retryable result. Calling Send
// on an already-sent order re-dispatches without changing state.
func (s *PurchaseOrderService) Send(ctx context.Context, orderID uuid.UUID) (*SendResultResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByID(ctx, order.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.CanDispatch() {
		return nil, shared.NewDomainError("SUPPLIER_NOT_CONTACTABLE", "Supplier has no email address on file")
	}

	if order.IsDraft() {
		if err := order.MarkSent(); err != nil {
			return nil, err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, order)
	} else if !order.IsSent() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send order in %s status", order.Status))
	}

	result := &SendResultResponse{
		Order:      ToPurchaseOrderResponse(order),
		Dispatched: true,
	}
	if s.dispatch == nil {
		result.Dispatched = false
		result.Message = "No dispatch gateway configured; order marked sent"
		return result, nil
	}
	if err := s.dispatch.SendPurchaseOrder(ctx, order, supplier); err != nil {
		result.Dispatched = false
		result.Message = "Supplier notification failed; the order remains sent and dispatch can be retried"
		return result, nil
	}
	return result, nil
}

// Receive records goods received against a purchase order
// The order update, item received quantities and new inventory batches are
// persisted in a single transaction
func (s *PurchaseOrderService) Receive(ctx context.Context, orderID uuid.UUID, req ReceivePurchaseOrderRequest) (*ReceiveResultResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entries := make([]procurement.ReceiptEntry, len(req.Items))
	for i, item := range req.Items {
		entries[i] = procurement.ReceiptEntry{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			BatchNumber:  item.BatchNumber,
			ExpiryDate:   item.ExpiryDate,
			MRP:          item.MRP,
			SellingPrice: item.SellingPrice,
		}
	}

	lines, err := order.Receive(entries)
	if err != nil {
		return nil, err
	}

	batches := make([]*inventory.InventoryBatch, 0, len(lines))
	for _, line := range lines {
		batch, err := inventory.NewInventoryBatch(inventory.NewBatchParams{
			BatchNumber:     line.BatchNumber,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			ProductCode:     line.ProductCode,
			Quantity:        line.Quantity,
			UnitCost:        line.UnitPrice,
			MRP:             line.MRP,
			SellingPrice:    line.SellingPrice,
			ExpiryDate:      *line.ExpiryDate,
			SupplierID:      order.SupplierID,
			SupplierName:    order.SupplierName,
			PurchaseOrderID: order.ID,
			PONumber:        order.PONumber,
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}

	if err := s.orderRepo.SaveReceiptWithLock(ctx, order, batches); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	return &ReceiveResultResponse{
		Order:           ToPurchaseOrderResponse(order),
		Batches:         ToReceivedBatchResponses(batches),
		IsFullyReceived: order.IsReceived(),
	}, nil
}

// Cancel cancels a purchase order
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// OverrideStatus sets an order's status directly, bypassing transition guards
func (s *PurchaseOrderService) OverrideStatus(ctx context.Context, orderID uuid.UUID, req OverrideStatusRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.OverrideStatus(procurement.PurchaseOrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Document renders a purchase order as a printable PDF
func (s *PurchaseOrderService) Document(ctx context.Context, orderID uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", shared.NewDomainError("DEPENDENCY_FAILED", "Document rendering is not configured")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	supplier, err := s.supplierRepo.FindByID(ctx, order.SupplierID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.renderer.RenderPurchaseOrder(ctx, order, supplier)
	if err != nil {
		return nil, "", shared.NewDomainError("DEPENDENCY_FAILED", "Failed to render purchase order document")
	}

	filename := fmt.Sprintf("%s.pdf", order.PONumber)
	return pdf, filename, nil
}

// GetStatusSummary retrieves order counts per status
func (s *PurchaseOrderService) GetStatusSummary(ctx context.Context) (*PurchaseOrderStatusSummary, error) {
	summary := &PurchaseOrderStatusSummary{}
	counts := []struct {
		status procurement.PurchaseOrderStatus
		dest   *int64
	}{
		{procurement.PurchaseOrderStatusDraft, &summary.Draft},
		{procurement.PurchaseOrderStatusSent, &summary.Sent},
		{procurement.PurchaseOrderStatusPartiallyReceived, &summary.PartiallyReceived},
		{procurement.PurchaseOrderStatusReceived, &summary.Received},
		{procurement.PurchaseOrderStatusCancelled, &summary.Cancelled},
	}
	for _, c := range counts {
		n, err := s.orderRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.dest = n
		summary.Total += n
	}
	return summary, nil
}

// lookupProducts loads and validates the catalog products referenced by the
// create request
func (s *PurchaseOrderService) lookupProducts(ctx context.Context, items []CreatePurchaseOrderItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", fmt.Sprintf("Product %s appears more than once", item.ProductID))
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found in catalog", id))
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("PRODUCT_DISCONTINUED", fmt.Sprintf("Product %s is discontinued", product.SKU))
		}
	}
	return byID, nil
}

// generatePONumber produces the next PO number in PO-YYYY-NNNNN form
func (s *PurchaseOrderService) generatePONumber(ctx context.Context) (string, error) {
	year := time.Now().Year()

	var seq int64
	var err error
	if s.allocator != nil {
		seq, err = s.allocator.NextSequence(ctx, year)
	} else {
		seq, err = s.orderRepo.NextSequenceForYear(ctx, year)
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("PO-%d-%05d", year, seq), nil
}

// publishEvents publishes the order's pending domain events
// Delivery is best effort; persistence has already committed
func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *procurement.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
