package dto

import "net/http"

// General error codes raised at the HTTP boundary
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes
// Input validation maps to 400, business rule violations to 422, conflicts
// to 409, downstream dependency failures to 502
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInternal:     http.StatusInternalServerError,
	"REQUEST_TOO_LARGE": http.StatusRequestEntityTooLarge,

	// Malformed input
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_PO_NUMBER":     http.StatusBadRequest,
	"INVALID_SUPPLIER":      http.StatusBadRequest,
	"INVALID_SUPPLIER_NAME": http.StatusBadRequest,
	"INVALID_PRODUCT":       http.StatusBadRequest,
	"INVALID_PRODUCT_NAME":  http.StatusBadRequest,
	"INVALID_QUANTITY":      http.StatusBadRequest,
	"INVALID_PRICE":         http.StatusBadRequest,
	"INVALID_TAX":           http.StatusBadRequest,
	"INVALID_REASON":        http.StatusBadRequest,
	"INVALID_STATUS":        http.StatusBadRequest,
	"INVALID_BATCH_NUMBER":  http.StatusBadRequest,
	"INVALID_EXPIRY":        http.StatusBadRequest,
	"INVALID_MRP":           http.StatusBadRequest,
	"INVALID_COST":          http.StatusBadRequest,
	"INVALID_CODE":          http.StatusBadRequest,
	"INVALID_NAME":          http.StatusBadRequest,
	"INVALID_GSTIN":         http.StatusBadRequest,

	// Business rule violations
	"INVALID_STATE":            http.StatusUnprocessableEntity,
	"NO_ITEMS":                 http.StatusUnprocessableEntity,
	"DUPLICATE_PRODUCT":        http.StatusUnprocessableEntity,
	"MISSING_BATCH":            http.StatusUnprocessableEntity,
	"MISSING_EXPIRY":           http.StatusUnprocessableEntity,
	"ITEM_NOT_FOUND":           http.StatusUnprocessableEntity,
	"QUANTITY_EXCEEDED":        http.StatusUnprocessableEntity,
	"PRODUCT_NOT_FOUND":        http.StatusUnprocessableEntity,
	"PRODUCT_DISCONTINUED":     http.StatusUnprocessableEntity,
	"SUPPLIER_INACTIVE":        http.StatusUnprocessableEntity,
	"SUPPLIER_NOT_CONTACTABLE": http.StatusUnprocessableEntity,

	// Resource errors
	"NOT_FOUND":               http.StatusNotFound,
	"ALREADY_EXISTS":          http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,

	// Downstream dependencies
	"DEPENDENCY_FAILED": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for a domain error code
// Unknown codes map to 500 Internal Server Error
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
