package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// VendorOrderEntry is a per-vendor index row written in the same transaction
// as the order itself. Revenue and units cover only the vendor's own line
// items, so vendor dashboards and analytics never scan the full orders table.
type VendorOrderEntry struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VendorID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_vendor_placed,priority:1"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Revenue    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Units      int             `gorm:"not null"`
	Status     Status          `gorm:"type:varchar(20);not null;index"`
	PlacedAt   time.Time       `gorm:"not null;index:idx_vendor_placed,priority:2"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (VendorOrderEntry) TableName() string {
	return "vendor_order_entries"
}

// NewVendorOrderEntry builds the index row for one vendor's share of an order
func NewVendorOrderEntry(o *Order, vendorID uuid.UUID) VendorOrderEntry {
	units := 0
	for _, item := range o.ItemsForVendor(vendorID) {
		units += item.Quantity
	}
	return VendorOrderEntry{
		ID:         uuid.New(),
		VendorID:   vendorID,
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Revenue:    o.VendorRevenue(vendorID),
		Units:      units,
		Status:     o.Status,
		PlacedAt:   o.CreatedAt,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// VendorOrderEntryRepository defines persistence for the vendor order index
type VendorOrderEntryRepository interface {
	SaveAll(ctx context.Context, entries []VendorOrderEntry) error
	FindByVendor(ctx context.Context, vendorID uuid.UUID, since *time.Time) ([]VendorOrderEntry, error)
	FindOrderIDsByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]uuid.UUID, int64, error)
	UpdateStatusByOrder(ctx context.Context, orderID uuid.UUID, status Status) error
}
