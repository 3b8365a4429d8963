package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/shopspring/decimal"
)

// CreateOfferRequest creates a coupon
type CreateOfferRequest struct {
	Code           string          `json:"code" binding:"required,min=1,max=50"`
	Description    string          `json:"description" binding:"max=500"`
	DiscountType   string          `json:"discount_type" binding:"required,oneof=PERCENTAGE FIXED"`
	Value          decimal.Decimal `json:"value" binding:"required"`
	MinOrderValue  decimal.Decimal `json:"min_order_value"`
	StartDate      time.Time       `json:"start_date" binding:"required"`
	ExpiryDate     time.Time       `json:"expiry_date" binding:"required"`
	Category       string          `json:"category" binding:"omitempty,max=100"`
	ProductIDs     []uuid.UUID     `json:"product_ids"`
	MaxRedemptions int             `json:"max_redemptions" binding:"min=0"`
}

// UpdateOfferRequest updates mutable coupon fields
type UpdateOfferRequest struct {
	Description    *string    `json:"description"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	MaxRedemptions *int       `json:"max_redemptions"`
	Active         *bool      `json:"active"`
}

// ValidateOfferRequest checks a code against a prospective cart total
type ValidateOfferRequest struct {
	Code      string          `json:"code" binding:"required"`
	CartTotal decimal.Decimal `json:"cart_total" binding:"required"`
}

// OfferListFilter narrows coupon listings
type OfferListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

// OfferResponse is the admin view of a coupon
type OfferResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description,omitempty"`
	DiscountType    string          `json:"discount_type"`
	Value           decimal.Decimal `json:"value"`
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	StartDate       time.Time       `json:"start_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	Scope           string          `json:"scope"`
	Category        string          `json:"category,omitempty"`
	ProductIDs      []string        `json:"product_ids,omitempty"`
	Status          string          `json:"status"`
	MaxRedemptions  int             `json:"max_redemptions"`
	RedemptionCount int             `json:"redemption_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ValidationResponse is the outcome of a coupon pre-check
type ValidationResponse struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Reason   string          `json:"reason,omitempty"`
}

// ToOfferResponse maps an offer to its admin view
func ToOfferResponse(o *promotion.Offer) OfferResponse {
	return OfferResponse{
		ID:              o.ID,
		Code:            o.Code,
		Description:     o.Description,
		DiscountType:    string(o.DiscountType),
		Value:           o.Value,
		MinOrderValue:   o.MinOrderValue,
		StartDate:       o.StartDate,
		ExpiryDate:      o.ExpiryDate,
		Scope:           string(o.Scope),
		Category:        o.Category,
		ProductIDs:      o.ProductIDs,
		Status:          string(o.Status),
		MaxRedemptions:  o.MaxRedemptions,
		RedemptionCount: o.RedemptionCount,
		CreatedAt:       o.CreatedAt,
	}
}

// ToOfferResponses maps a slice of offers
func ToOfferResponses(offers []promotion.Offer) []OfferResponse {
	responses := make([]OfferResponse, 0, len(offers))
	for idx := range offers {
		responses = append(responses, ToOfferResponse(&offers[idx]))
	}
	return responses
}
