package catalog

import (
	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated  = "ProductCreated"
	EventTypeProductUpdated  = "ProductUpdated"
	EventTypeProductDelisted = "ProductDelisted"
)

// ProductCreatedEvent is published when a new product is listed
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID       `json:"product_id"`
	VendorID  *uuid.UUID      `json:"vendor_id,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		VendorID:        product.VendorID,
		Name:            product.Name,
		Category:        product.Category,
		Price:           product.Price,
		Stock:           product.Stock,
	}
}

// ProductUpdatedEvent is published when a product is edited
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		Category:        product.Category,
	}
}

// ProductDelistedEvent is published when a product is soft-deleted
type ProductDelistedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID  `json:"product_id"`
	VendorID  *uuid.UUID `json:"vendor_id,omitempty"`
}

// NewProductDelistedEvent creates a new ProductDelistedEvent
func NewProductDelistedEvent(product *Product) *ProductDelistedEvent {
	return &ProductDelistedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDelisted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		VendorID:        product.VendorID,
	}
}
