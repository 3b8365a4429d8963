package promotion

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountType determines how an offer's value is applied to a cart total
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// IsValid checks if the discount type is known
func (d DiscountType) IsValid() bool {
	return d == DiscountPercentage || d == DiscountFixed
}

// OfferStatus is the lifecycle state of an offer
type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "ACTIVE"
	OfferStatusInactive OfferStatus = "INACTIVE"
)

// OfferScope limits which products an offer applies to
type OfferScope string

const (
	ScopeAll      OfferScope = "ALL"
	ScopeCategory OfferScope = "CATEGORY"
	ScopeProducts OfferScope = "PRODUCTS"
)

// RejectionReason explains why a coupon failed validation
type RejectionReason string

const (
	ReasonInvalidCode  RejectionReason = "INVALID_CODE"
	ReasonExpired      RejectionReason = "EXPIRED"
	ReasonBelowMinimum RejectionReason = "BELOW_MINIMUM"
	ReasonExhausted    RejectionReason = "EXHAUSTED"
)

// ValidationResult is the outcome of validating a coupon against a cart
type ValidationResult struct {
	Valid    bool
	Discount decimal.Decimal
	Reason   RejectionReason
}

// Offer is a coupon that grants a discount at checkout.
// MaxRedemptions of zero means unlimited.
type Offer struct {
	shared.BaseAggregateRoot
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description     string          `gorm:"type:varchar(500)"`
	DiscountType    DiscountType    `gorm:"type:varchar(20);not null"`
	Value           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MinOrderValue   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	StartDate       time.Time       `gorm:"not null"`
	ExpiryDate      time.Time       `gorm:"not null"`
	Scope           OfferScope      `gorm:"type:varchar(20);not null;default:'ALL'"`
	Category        string          `gorm:"type:varchar(100)"`
	ProductIDs      []string        `gorm:"serializer:json"`
	Status          OfferStatus     `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	MaxRedemptions  int             `gorm:"not null;default:0"`
	RedemptionCount int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Offer) TableName() string {
	return "offers"
}

// NewOffer creates an offer. The code is normalized to upper case so lookups
// are case-insensitive.
func NewOffer(code, description string, discountType DiscountType, value, minOrderValue decimal.Decimal, startDate, expiryDate time.Time) (*Offer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Offer code cannot be empty")
	}
	if !discountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be PERCENTAGE or FIXED")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Discount value must be positive")
	}
	if discountType == DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VALUE", "Percentage discount cannot exceed 100")
	}
	if minOrderValue.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order value cannot be negative")
	}
	if !expiryDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_WINDOW", "Expiry date must be after start date")
	}

	return &Offer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Description:       description,
		DiscountType:      discountType,
		Value:             value,
		MinOrderValue:     minOrderValue,
		StartDate:         startDate,
		ExpiryDate:        expiryDate,
		Scope:             ScopeAll,
		Status:            OfferStatusActive,
	}, nil
}

// Validate checks the offer against a cart total at the given instant and
// computes the discount. It is a pure function: no clock reads, no I/O.
// Checks run in order: status, time window, redemption cap, minimum order.
func (o *Offer) Validate(cartTotal decimal.Decimal, now time.Time) ValidationResult {
	if o.Status != OfferStatusActive {
		return ValidationResult{Valid: false, Discount: decimal.Zero, Reason: ReasonInvalidCode}
	}
	if now.Before(o.StartDate) || now.After(o.ExpiryDate) {
		return ValidationResult{Valid: false, Discount: decimal.Zero, Reason: ReasonExpired}
	}
	if o.MaxRedemptions > 0 && o.RedemptionCount >= o.MaxRedemptions {
		return ValidationResult{Valid: false, Discount: decimal.Zero, Reason: ReasonExhausted}
	}
	if cartTotal.LessThan(o.MinOrderValue) {
		return ValidationResult{Valid: false, Discount: decimal.Zero, Reason: ReasonBelowMinimum}
	}

	return ValidationResult{Valid: true, Discount: o.DiscountFor(cartTotal)}
}

// DiscountFor computes the discount amount for a cart total.
// Percentage offers take value% of the total; fixed offers are capped at
// the total so it never goes negative.
func (o *Offer) DiscountFor(cartTotal decimal.Decimal) decimal.Decimal {
	switch o.DiscountType {
	case DiscountPercentage:
		return cartTotal.Mul(o.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		if o.Value.GreaterThan(cartTotal) {
			return cartTotal
		}
		return o.Value
	}
	return decimal.Zero
}

// Activate marks the offer usable at checkout
func (o *Offer) Activate() {
	o.Status = OfferStatusActive
	o.UpdatedAt = time.Now()
}

// Deactivate withdraws the offer from checkout
func (o *Offer) Deactivate() {
	o.Status = OfferStatusInactive
	o.UpdatedAt = time.Now()
}

// RestrictToCategory scopes the offer to a single product category
func (o *Offer) RestrictToCategory(category string) error {
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	o.Scope = ScopeCategory
	o.Category = category
	o.ProductIDs = nil
	o.UpdatedAt = time.Now()
	return nil
}

// RestrictToProducts scopes the offer to an explicit product list
func (o *Offer) RestrictToProducts(productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return shared.NewDomainError("INVALID_PRODUCTS", "Product list cannot be empty")
	}
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, id.String())
	}
	o.Scope = ScopeProducts
	o.ProductIDs = ids
	o.Category = ""
	o.UpdatedAt = time.Now()
	return nil
}

// AppliesTo reports whether the offer covers a product, by its id and
// category, under the offer's scope
func (o *Offer) AppliesTo(productID uuid.UUID, category string) bool {
	switch o.Scope {
	case ScopeCategory:
		return o.Category == category
	case ScopeProducts:
		id := productID.String()
		for _, candidate := range o.ProductIDs {
			if candidate == id {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// SetMaxRedemptions caps total uses across all customers, zero for unlimited
func (o *Offer) SetMaxRedemptions(limit int) error {
	if limit < 0 {
		return shared.NewDomainError("INVALID_LIMIT", "Redemption limit cannot be negative")
	}
	o.MaxRedemptions = limit
	o.UpdatedAt = time.Now()
	return nil
}
