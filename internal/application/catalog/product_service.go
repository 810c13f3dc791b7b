package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmakart/backend/internal/domain/catalog"
	"github.com/pharmakart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductListFilter represents filter options for the product picker
type ProductListFilter struct {
	Search   string  `form:"search"`
	Status   *string `form:"status" binding:"omitempty,oneof=active discontinued"`
	Page     int     `form:"page" binding:"omitempty,min=1"`
	PageSize int     `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a catalog product in API responses
type ProductResponse struct {
	ID                   uuid.UUID       `json:"id"`
	SKU                  string          `json:"sku"`
	Name                 string          `json:"name"`
	GenericName          string          `json:"generic_name,omitempty"`
	Manufacturer         string          `json:"manufacturer,omitempty"`
	HSNCode              string          `json:"hsn_code,omitempty"`
	TaxPercentage        decimal.Decimal `json:"tax_percentage"`
	DefaultCost          decimal.Decimal `json:"default_cost"`
	RequiresPrescription bool            `json:"requires_prescription"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                   p.ID,
		SKU:                  p.SKU,
		Name:                 p.Name,
		GenericName:          p.GenericName,
		Manufacturer:         p.Manufacturer,
		HSNCode:              p.HSNCode,
		TaxPercentage:        p.TaxPercentage,
		DefaultCost:          p.DefaultCost,
		RequiresPrescription: p.RequiresPrescription,
		Status:               string(p.Status),
		CreatedAt:            p.CreatedAt,
	}
}

// ProductService exposes catalog reference data to the procurement UI
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
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
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}
