package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product represents a marketplace listing owned by a vendor.
// It is the aggregate root for catalog operations. Products are never
// hard-deleted: Delist hides them behind the IsDeleted flag so order
// line-item snapshots keep resolving.
type Product struct {
	shared.BaseAggregateRoot
	VendorID      *uuid.UUID      `gorm:"type:uuid;index"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Category      string          `gorm:"type:varchar(100);index"`
	Brand         string          `gorm:"type:varchar(100)"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Stock         int             `gorm:"not null;default:0"`
	Colors        []string        `gorm:"serializer:json"`
	Sizes         []string        `gorm:"serializer:json"`
	Images        []string        `gorm:"serializer:json"`
	Rating        float64         `gorm:"not null;default:0"`
	NumReviews    int             `gorm:"not null;default:0"`
	IsDeleted     bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product listing for a vendor
func NewProduct(vendorID uuid.UUID, name, description, category string, price valueobject.Money, stock int) (*Product, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VendorID:          &vendorID,
		Name:              strings.TrimSpace(name),
		Description:       description,
		Category:          strings.TrimSpace(category),
		Price:             price.Amount(),
		Stock:             stock,
		Colors:            make([]string, 0),
		Sizes:             make([]string, 0),
		Images:            make([]string, 0),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, category, brand string) error {
	if err := validateName(name); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.Brand = strings.TrimSpace(brand)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrice sets the selling price and optionally the struck-through original price
func (p *Product) SetPrice(price valueobject.Money, originalPrice *valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if originalPrice != nil && originalPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Original price cannot be negative")
	}

	p.Price = price.Amount()
	if originalPrice != nil {
		amt := originalPrice.Amount()
		p.OriginalPrice = &amt
	} else {
		p.OriginalPrice = nil
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetVariants replaces the colour and size option lists
func (p *Product) SetVariants(colors, sizes []string) {
	p.Colors = colors
	p.Sizes = sizes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetImages replaces the image URL list
func (p *Product) SetImages(images []string) {
	p.Images = images
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// ApplyReviewStats updates the derived rating aggregate after a review write
func (p *Product) ApplyReviewStats(rating float64, numReviews int) {
	p.Rating = rating
	p.NumReviews = numReviews
	p.UpdatedAt = time.Now()
}

// Delist soft-deletes the product so it disappears from the storefront
func (p *Product) Delist() error {
	if p.IsDeleted {
		return shared.NewDomainError("INVALID_STATE", "Product is already delisted")
	}

	p.IsDeleted = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductDelistedEvent(p))

	return nil
}

// IsOwnedBy returns true if the product belongs to the given vendor
func (p *Product) IsOwnedBy(vendorID uuid.UUID) bool {
	return p.VendorID != nil && *p.VendorID == vendorID
}

// PriceMoney returns the price as a Money value object
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Price)
}

// InStock returns true if at least quantity units are available
func (p *Product) InStock(quantity int) bool {
	return p.Stock >= quantity
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
