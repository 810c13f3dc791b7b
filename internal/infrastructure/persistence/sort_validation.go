package persistence

import "strings"

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField when the input is empty or not allowed.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"po_number":    true,
	"order_date":   true,
	"total_amount": true,
	"status":       true,
	"sent_at":      true,
}

// BatchSortFields contains allowed sort fields for inventory batches
var BatchSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"batch_number": true,
	"expiry_date":  true,
	"received_at":  true,
	"quantity":     true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
}

// ProductSortFields contains allowed sort fields for catalog products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"sku":        true,
	"name":       true,
	"status":     true,
}
