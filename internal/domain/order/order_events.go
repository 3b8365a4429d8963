package order

import (
	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeOrder = "Order"

const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeReturnRequested    = "ReturnRequested"
	EventTypeReturnDecided      = "ReturnDecided"
	EventTypeExchangeRequested  = "ExchangeRequested"
	EventTypeExchangeDecided    = "ExchangeDecided"
)

// PlacedItem is the per-line payload carried by OrderPlacedEvent,
// enough for vendor fan-out without another order load
type PlacedItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VendorID    *uuid.UUID      `json:"vendor_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderPlacedEvent is emitted when an order has been placed and paid for
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CouponCode  string          `json:"coupon_code,omitempty"`
	Items       []PlacedItem    `json:"items"`
	VendorIDs   []uuid.UUID     `json:"vendor_ids"`
}

// NewOrderPlacedEvent creates a new order placed event
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	items := make([]PlacedItem, 0, len(o.Items))
	for idx := range o.Items {
		items = append(items, PlacedItem{
			ProductID:   o.Items[idx].ProductID,
			VendorID:    o.Items[idx].VendorID,
			ProductName: o.Items[idx].ProductName,
			Quantity:    o.Items[idx].Quantity,
			Amount:      o.Items[idx].Amount,
		})
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
		CouponCode:      o.CouponCode,
		Items:           items,
		VendorIDs:       o.VendorIDs(),
	}
}

// OrderStatusChangedEvent is emitted on every fulfilment status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID   `json:"customer_id"`
	FromStatus Status      `json:"from_status"`
	ToStatus   Status      `json:"to_status"`
	VendorIDs  []uuid.UUID `json:"vendor_ids"`
}

// NewOrderStatusChangedEvent creates a new order status changed event
func NewOrderStatusChangedEvent(o *Order, from, to Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		CustomerID:      o.CustomerID,
		FromStatus:      from,
		ToStatus:        to,
		VendorIDs:       o.VendorIDs(),
	}
}

// ReturnRequestedEvent is emitted when a customer opens a return request
type ReturnRequestedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID   `json:"customer_id"`
	Reason     string      `json:"reason"`
	VendorIDs  []uuid.UUID `json:"vendor_ids"`
}

// NewReturnRequestedEvent creates a new return requested event
func NewReturnRequestedEvent(o *Order, reason string) *ReturnRequestedEvent {
	return &ReturnRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRequested, AggregateTypeOrder, o.ID),
		CustomerID:      o.CustomerID,
		Reason:          reason,
		VendorIDs:       o.VendorIDs(),
	}
}

// ReturnDecidedEvent is emitted when a return request is approved or rejected
type ReturnDecidedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Approved   bool      `json:"approved"`
}

// NewReturnDecidedEvent creates a new return decided event
func NewReturnDecidedEvent(o *Order, approved bool) *ReturnDecidedEvent {
	return &ReturnDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnDecided, AggregateTypeOrder, o.ID),
		CustomerID:      o.CustomerID,
		Approved:        approved,
	}
}

// ExchangeRequestedEvent is emitted when a customer opens an exchange request
type ExchangeRequestedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID   `json:"customer_id"`
	Reason     string      `json:"reason"`
	VendorIDs  []uuid.UUID `json:"vendor_ids"`
}

// NewExchangeRequestedEvent creates a new exchange requested event
func NewExchangeRequestedEvent(o *Order, reason string) *ExchangeRequestedEvent {
	return &ExchangeRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExchangeRequested, AggregateTypeOrder, o.ID),
		CustomerID:      o.CustomerID,
		Reason:          reason,
		VendorIDs:       o.VendorIDs(),
	}
}

// ExchangeDecidedEvent is emitted when an exchange request is approved or rejected
type ExchangeDecidedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Approved   bool      `json:"approved"`
}

// NewExchangeDecidedEvent creates a new exchange decided event
func NewExchangeDecidedEvent(o *Order, approved bool) *ExchangeDecidedEvent {
	return &ExchangeDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExchangeDecided, AggregateTypeOrder, o.ID),
		CustomerID:      o.CustomerID,
		Approved:        approved,
	}
}
