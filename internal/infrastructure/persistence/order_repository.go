package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormOrderRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an order with its items and timeline preloaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByCustomer finds a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("customer_id = ?", customerID)
	query = applyOrderFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []order.Order
	err := applyFilter(query, filter).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindByIDs loads a batch of orders with items preloaded
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]order.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id IN ?", ids).
		Find(&orders).Error
	return orders, err
}

// FindAll finds all orders matching the filter, for admin views
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	query = applyOrderFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []order.Order
	err := applyFilter(query, filter).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Save persists the order with its items and timeline in one transaction.
// Items no longer on the aggregate are deleted; timeline entries are
// append-only so they are only ever inserted. Pending domain events go to
// the outbox inside the same transaction.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveInTx(ctx, tx, o)
	})
}

// SaveInTx persists the order inside an externally managed transaction.
// Checkout uses this to keep stock decrements, ledger writes and the order
// insert in a single atomic unit.
func (r *GormOrderRepository) SaveInTx(ctx context.Context, tx *gorm.DB, o *order.Order) error {
	return r.saveInTx(ctx, tx, o)
}

func (r *GormOrderRepository) saveInTx(ctx context.Context, tx *gorm.DB, o *order.Order) error {
	if err := tx.Omit("Items", "Timeline").Save(o).Error; err != nil {
		return err
	}

	keptIDs := make([]uuid.UUID, 0, len(o.Items))
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		keptIDs = append(keptIDs, o.Items[i].ID)
	}
	del := tx.Where("order_id = ?", o.ID)
	if len(keptIDs) > 0 {
		del = del.Where("id NOT IN ?", keptIDs)
	}
	if err := del.Delete(&order.Item{}).Error; err != nil {
		return err
	}
	for i := range o.Items {
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}

	for i := range o.Timeline {
		o.Timeline[i].OrderID = o.ID
		if err := tx.Save(&o.Timeline[i]).Error; err != nil {
			return err
		}
	}

	if r.outboxSaver != nil {
		events := o.GetDomainEvents()
		if len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return err
			}
			o.ClearDomainEvents()
		}
	}

	return nil
}

// Count returns the total number of orders
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).Count(&count).Error
	return count, err
}

// CountByStatus returns order counts grouped by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TotalRevenue sums the grand total of every non-cancelled order
func (r *GormOrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("status <> ?", order.StatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ExistsDeliveredWithProduct reports whether the customer has a delivered
// order containing the product. Reviews are gated on this.
func (r *GormOrderRepository) ExistsDeliveredWithProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.customer_id = ? AND orders.status = ? AND order_items.product_id = ?",
			customerID, order.StatusDelivered, productID).
		Count(&count).Error
	return count > 0, err
}

func applyOrderFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if returnStatus, ok := filter.Filters["return_status"].(string); ok && returnStatus != "" {
		query = query.Where("return_status = ?", returnStatus)
	}
	return query
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
