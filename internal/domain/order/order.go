package order

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the fulfilment status of an order
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusReturned   Status = "RETURNED"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// RETURNED is only reachable through return approval, never directly.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled, StatusReturned:
		return false
	}
	return false
}

// ReturnState tracks the customer-initiated return or exchange side-channel
type ReturnState string

const (
	ReturnStateNone      ReturnState = "NONE"
	ReturnStateRequested ReturnState = "REQUESTED"
	ReturnStateApproved  ReturnState = "APPROVED"
	ReturnStateRejected  ReturnState = "REJECTED"
)

// ReturnWindowDays is how long after delivery a return or exchange may be
// requested. The difference is day-truncated with ceiling rounding, so a
// request exactly seven days after delivery is still inside the window.
const ReturnWindowDays = 7

// Item is one line of an order. Product name, image, unit price and owning
// vendor are snapshots frozen at checkout, independent of later catalog edits.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VendorID    *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Image       string          `gorm:"type:varchar(500)"`
	Color       string          `gorm:"type:varchar(50)"`
	Size        string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// TimelineEntry is one append-only audit record of a status change
type TimelineEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    Status    `gorm:"type:varchar(20);not null"`
	Note      string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (TimelineEntry) TableName() string {
	return "order_timeline"
}

// ShippingAddress is the address snapshot frozen at checkout
type ShippingAddress struct {
	Line1      string `gorm:"type:varchar(200)"`
	Line2      string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(100)"`
	Phone      string `gorm:"type:varchar(30)"`
}

// Order is the aggregate root for a customer purchase. It is owned by the
// buying customer, while every vendor with a line item gets a read-scoped
// view plus a bounded set of status transitions.
type Order struct {
	shared.BaseAggregateRoot
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items          []Item          `gorm:"foreignKey:OrderID"`
	Timeline       []TimelineEntry `gorm:"foreignKey:OrderID"`
	SubTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CouponCode     string          `gorm:"type:varchar(50)"`
	Status         Status          `gorm:"type:varchar(20);not null;index"`
	ReturnStatus   ReturnState     `gorm:"type:varchar(20);not null;default:'NONE'"`
	ExchangeStatus ReturnState     `gorm:"type:varchar(20);not null;default:'NONE'"`
	ReturnReason   string          `gorm:"type:varchar(500)"`
	Address        ShippingAddress `gorm:"embedded;embeddedPrefix:ship_"`
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a pending order for a customer. Items are added before
// the order is persisted; totals start at zero.
func NewOrder(customerID uuid.UUID, address ShippingAddress) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Items:             make([]Item, 0),
		Timeline:          make([]TimelineEntry, 0),
		SubTotal:          decimal.Zero,
		Discount:          decimal.Zero,
		TotalAmount:       decimal.Zero,
		Status:            StatusPending,
		ReturnStatus:      ReturnStateNone,
		ExchangeStatus:    ReturnStateNone,
		Address:           address,
	}

	o.appendTimeline(StatusPending, "Order placed")

	return o, nil
}

// AddItem appends a line item with snapshotted product data and recalculates
// totals. Only valid before the order is placed (still pending with an empty
// coupon application).
func (o *Order) AddItem(productID uuid.UUID, vendorID *uuid.UUID, name, image, color, size string, quantity int, unitPrice valueobject.Money) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	item := Item{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		VendorID:    vendorID,
		ProductName: name,
		Image:       image,
		Color:       color,
		Size:        size,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Amount:      unitPrice.MultiplyByInt(int64(quantity)).Amount(),
		CreatedAt:   time.Now(),
	}

	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return &o.Items[len(o.Items)-1], nil
}

// ApplyCoupon records the coupon code and its computed discount.
// The discount is capped so the total never goes negative.
func (o *Order) ApplyCoupon(code string, discount valueobject.Money) error {
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	capped := discount.Amount()
	if capped.GreaterThan(o.SubTotal) {
		capped = o.SubTotal
	}

	o.CouponCode = code
	o.Discount = capped
	o.TotalAmount = o.SubTotal.Sub(o.Discount)
	o.UpdatedAt = time.Now()

	return nil
}

// Place emits the placed event once totals and items are final
func (o *Order) Place() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot place an order without items")
	}

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return nil
}

// TransitionTo moves the order along the fulfilment state machine, appending
// a timeline record. Privilege checks belong to the application layer.
func (o *Order) TransitionTo(target Status, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	if target == StatusCancelled {
		o.CancelledAt = &now
	}
	o.appendTimeline(target, note)
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))

	return nil
}

// CancelByCustomer cancels the order on the buyer's behalf.
// Permitted only before shipment.
func (o *Order) CancelByCustomer(reason string) error {
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		reason = "Cancelled by customer"
	}
	return o.TransitionTo(StatusCancelled, reason)
}

// DeliveredAt returns the timestamp of the DELIVERED timeline entry, or nil
func (o *Order) DeliveredAt() *time.Time {
	for idx := range o.Timeline {
		if o.Timeline[idx].Status == StatusDelivered {
			return &o.Timeline[idx].CreatedAt
		}
	}
	return nil
}

// WithinReturnWindow reports whether now is inside the return window,
// measured from delivery with ceiling-rounded whole days.
func (o *Order) WithinReturnWindow(now time.Time) bool {
	deliveredAt := o.DeliveredAt()
	if deliveredAt == nil {
		return false
	}
	days := int(math.Ceil(now.Sub(*deliveredAt).Hours() / 24))
	return days <= ReturnWindowDays
}

// RequestReturn opens a return request on a delivered order
func (o *Order) RequestReturn(reason string, now time.Time) error {
	if o.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Only delivered orders can be returned")
	}
	if o.ReturnStatus != ReturnStateNone {
		return shared.NewDomainError("INVALID_STATE", "A return has already been requested")
	}
	if !o.WithinReturnWindow(now) {
		return shared.NewDomainError("RETURN_WINDOW_CLOSED", fmt.Sprintf("Returns are only accepted within %d days of delivery", ReturnWindowDays))
	}

	o.ReturnStatus = ReturnStateRequested
	o.ReturnReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewReturnRequestedEvent(o, reason))

	return nil
}

// RequestExchange opens an exchange request on a delivered order
func (o *Order) RequestExchange(reason string, now time.Time) error {
	if o.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Only delivered orders can be exchanged")
	}
	if o.ExchangeStatus != ReturnStateNone {
		return shared.NewDomainError("INVALID_STATE", "An exchange has already been requested")
	}
	if !o.WithinReturnWindow(now) {
		return shared.NewDomainError("RETURN_WINDOW_CLOSED", fmt.Sprintf("Exchanges are only accepted within %d days of delivery", ReturnWindowDays))
	}

	o.ExchangeStatus = ReturnStateRequested
	o.ReturnReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewExchangeRequestedEvent(o, reason))

	return nil
}

// DecideReturn approves or rejects a pending return. Approval moves the
// order to the terminal RETURNED status and appends a timeline record.
func (o *Order) DecideReturn(approve bool, note string) error {
	if o.ReturnStatus != ReturnStateRequested {
		return shared.NewDomainError("INVALID_STATE", "No pending return request")
	}

	now := time.Now()
	if approve {
		o.ReturnStatus = ReturnStateApproved
		o.Status = StatusReturned
		o.appendTimeline(StatusReturned, note)
	} else {
		o.ReturnStatus = ReturnStateRejected
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewReturnDecidedEvent(o, approve))

	return nil
}

// DecideExchange approves or rejects a pending exchange request
func (o *Order) DecideExchange(approve bool) error {
	if o.ExchangeStatus != ReturnStateRequested {
		return shared.NewDomainError("INVALID_STATE", "No pending exchange request")
	}

	if approve {
		o.ExchangeStatus = ReturnStateApproved
	} else {
		o.ExchangeStatus = ReturnStateRejected
	}
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewExchangeDecidedEvent(o, approve))

	return nil
}

// VendorIDs returns the distinct vendors represented in the order's items
func (o *Order) VendorIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for idx := range o.Items {
		if o.Items[idx].VendorID == nil {
			continue
		}
		id := *o.Items[idx].VendorID
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// ItemsForVendor returns only the line items owned by the given vendor
func (o *Order) ItemsForVendor(vendorID uuid.UUID) []Item {
	items := make([]Item, 0)
	for idx := range o.Items {
		if o.Items[idx].VendorID != nil && *o.Items[idx].VendorID == vendorID {
			items = append(items, o.Items[idx])
		}
	}
	return items
}

// VendorRevenue sums price*quantity over the vendor's items only
func (o *Order) VendorRevenue(vendorID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.ItemsForVendor(vendorID) {
		total = total.Add(item.Amount)
	}
	return total
}

// ContainsVendor reports whether the vendor owns at least one line item
func (o *Order) ContainsVendor(vendorID uuid.UUID) bool {
	for idx := range o.Items {
		if o.Items[idx].VendorID != nil && *o.Items[idx].VendorID == vendorID {
			return true
		}
	}
	return false
}

// IsOwnedBy returns true if the order belongs to the given customer
func (o *Order) IsOwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// recalculateTotals recomputes subtotal and total keeping the
// totalAmount == subTotal - discount invariant
func (o *Order) recalculateTotals() {
	sub := decimal.Zero
	for idx := range o.Items {
		sub = sub.Add(o.Items[idx].Amount)
	}
	o.SubTotal = sub
	if o.Discount.GreaterThan(o.SubTotal) {
		o.Discount = o.SubTotal
	}
	o.TotalAmount = o.SubTotal.Sub(o.Discount)
}

func (o *Order) appendTimeline(status Status, note string) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now(),
	})
}
