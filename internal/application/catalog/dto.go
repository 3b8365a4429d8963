package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a vendor's listing request
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description" binding:"max=5000"`
	Category      string           `json:"category" binding:"required,min=1,max=100"`
	Brand         string           `json:"brand" binding:"omitempty,max=100"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Stock         int              `json:"stock" binding:"min=0"`
	Colors        []string         `json:"colors"`
	Sizes         []string         `json:"sizes"`
	Images        []string         `json:"images"`
}

// UpdateProductRequest updates listing details
type UpdateProductRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description" binding:"max=5000"`
	Category      string           `json:"category" binding:"required,min=1,max=100"`
	Brand         string           `json:"brand" binding:"omitempty,max=100"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Colors        []string         `json:"colors"`
	Sizes         []string         `json:"sizes"`
	Images        []string         `json:"images"`
}

// AdjustStockRequest changes stock by a signed delta
type AdjustStockRequest struct {
	Change int    `json:"change" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

// ProductListFilter narrows product listings
type ProductListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Category string `form:"category"`
	Brand    string `form:"brand"`
}

// ProductResponse is the public view of a product
type ProductResponse struct {
	ID            uuid.UUID        `json:"id"`
	VendorID      *uuid.UUID       `json:"vendor_id,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock"`
	Colors        []string         `json:"colors"`
	Sizes         []string         `json:"sizes"`
	Images        []string         `json:"images"`
	Rating        float64          `json:"rating"`
	NumReviews    int              `json:"num_reviews"`
	IsDeleted     bool             `json:"is_deleted,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CategoryResponse is the public view of a category
type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ToProductResponse maps a product aggregate to its public view
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		VendorID:      p.VendorID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Brand:         p.Brand,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Stock:         p.Stock,
		Colors:        p.Colors,
		Sizes:         p.Sizes,
		Images:        p.Images,
		Rating:        p.Rating,
		NumReviews:    p.NumReviews,
		IsDeleted:     p.IsDeleted,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProductResponses maps a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for idx := range products {
		responses = append(responses, ToProductResponse(&products[idx]))
	}
	return responses
}
