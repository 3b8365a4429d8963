package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormVendorOrderEntryRepository implements VendorOrderEntryRepository using
// GORM. The vendor order index is written once at checkout and read by
// analytics queries, so there is no full-order-table scan on the vendor
// dashboard paths.
type GormVendorOrderEntryRepository struct {
	db *gorm.DB
}

// NewGormVendorOrderEntryRepository creates a new GormVendorOrderEntryRepository
func NewGormVendorOrderEntryRepository(db *gorm.DB) *GormVendorOrderEntryRepository {
	return &GormVendorOrderEntryRepository{db: db}
}

// SaveAll inserts index rows, one per vendor per order
func (r *GormVendorOrderEntryRepository) SaveAll(ctx context.Context, entries []order.VendorOrderEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// SaveAllInTx inserts index rows inside an externally managed transaction
func (r *GormVendorOrderEntryRepository) SaveAllInTx(ctx context.Context, tx *gorm.DB, entries []order.VendorOrderEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&entries).Error
}

// FindByVendor returns the vendor's index rows, newest first, optionally
// bounded to entries placed at or after since
func (r *GormVendorOrderEntryRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, since *time.Time) ([]order.VendorOrderEntry, error) {
	query := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if since != nil {
		query = query.Where("placed_at >= ?", *since)
	}

	var entries []order.VendorOrderEntry
	err := query.Order("placed_at DESC").Find(&entries).Error
	return entries, err
}

// FindOrderIDsByVendor pages through the IDs of orders containing the
// vendor's items, newest first
func (r *GormVendorOrderEntryRepository) FindOrderIDsByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]uuid.UUID, int64, error) {
	query := r.db.WithContext(ctx).Model(&order.VendorOrderEntry{}).
		Where("vendor_id = ?", vendorID)
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uuid.UUID
	err := query.Order("placed_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Pluck("order_id", &ids).Error
	return ids, total, err
}

// UpdateStatusByOrder mirrors an order status change onto every vendor's
// index row for that order
func (r *GormVendorOrderEntryRepository) UpdateStatusByOrder(ctx context.Context, orderID uuid.UUID, status order.Status) error {
	return r.db.WithContext(ctx).Model(&order.VendorOrderEntry{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

var _ order.VendorOrderEntryRepository = (*GormVendorOrderEntryRepository)(nil)
