package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CheckoutItemInput is one line of a checkout request
type CheckoutItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Color     string    `json:"color" binding:"omitempty,max=50"`
	Size      string    `json:"size" binding:"omitempty,max=50"`
}

// ShippingAddressInput carries the shipping destination inline
type ShippingAddressInput struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"omitempty,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"omitempty,max=30"`
}

// CheckoutRequest places an order. Items may be given inline; when empty the
// customer's cart is used. The address comes inline or from a saved address.
type CheckoutRequest struct {
	Items      []CheckoutItemInput   `json:"items"`
	CouponCode string                `json:"coupon_code" binding:"omitempty,max=50"`
	Address    *ShippingAddressInput `json:"address"`
	AddressID  *uuid.UUID            `json:"address_id"`
	ClearCart  bool                  `json:"clear_cart"`
}

// UpdateStatusRequest advances an order through its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=500"`
}

// ReturnRequestInput asks for a return or exchange
type ReturnRequestInput struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReturnDecisionRequest approves or rejects a pending return/exchange
type ReturnDecisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" binding:"omitempty,max=500"`
}

// OrderListFilter narrows order listings
type OrderListFilter struct {
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	Status       string `form:"status"`
	ReturnStatus string `form:"return_status"`
}

// OrderItemResponse is the public view of an order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VendorID    *uuid.UUID      `json:"vendor_id,omitempty"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image,omitempty"`
	Color       string          `json:"color,omitempty"`
	Size        string          `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// TimelineEntryResponse is one step of the order history
type TimelineEntryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ShippingAddressResponse echoes the shipping destination
type ShippingAddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderResponse is the public view of an order
type OrderResponse struct {
	ID             uuid.UUID               `json:"id"`
	CustomerID     uuid.UUID               `json:"customer_id"`
	Items          []OrderItemResponse     `json:"items"`
	SubTotal       decimal.Decimal         `json:"sub_total"`
	Discount       decimal.Decimal         `json:"discount"`
	TotalAmount    decimal.Decimal         `json:"total_amount"`
	CouponCode     string                  `json:"coupon_code,omitempty"`
	Status         string                  `json:"status"`
	ReturnStatus   string                  `json:"return_status"`
	ExchangeStatus string                  `json:"exchange_status"`
	ReturnReason   string                  `json:"return_reason,omitempty"`
	Address        ShippingAddressResponse `json:"address"`
	Timeline       []TimelineEntryResponse `json:"timeline,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ToOrderResponse maps an order aggregate to its public view
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for idx := range o.Items {
		item := &o.Items[idx]
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			VendorID:    item.VendorID,
			ProductName: item.ProductName,
			Image:       item.Image,
			Color:       item.Color,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	timeline := make([]TimelineEntryResponse, 0, len(o.Timeline))
	for idx := range o.Timeline {
		entry := &o.Timeline[idx]
		timeline = append(timeline, TimelineEntryResponse{
			Status:    string(entry.Status),
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return OrderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Items:          items,
		SubTotal:       o.SubTotal,
		Discount:       o.Discount,
		TotalAmount:    o.TotalAmount,
		CouponCode:     o.CouponCode,
		Status:         string(o.Status),
		ReturnStatus:   string(o.ReturnStatus),
		ExchangeStatus: string(o.ExchangeStatus),
		ReturnReason:   o.ReturnReason,
		Address: ShippingAddressResponse{
			Line1:      o.Address.Line1,
			Line2:      o.Address.Line2,
			City:       o.Address.City,
			State:      o.Address.State,
			PostalCode: o.Address.PostalCode,
			Country:    o.Address.Country,
			Phone:      o.Address.Phone,
		},
		Timeline:  timeline,
		CreatedAt: o.CreatedAt,
	}
}

// ToOrderResponses maps a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for idx := range orders {
		responses = append(responses, ToOrderResponse(&orders[idx]))
	}
	return responses
}
