package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormProductRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a product by its ID, delisted products included
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindListed finds a non-delisted product by its ID. Delisted products are
// indistinguishable from missing ones for buyers.
func (r *GormProductRepository) FindListed(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll finds non-delisted products with filtering. Search matches name and
// brand; category and brand filters come from filter.Filters.
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("is_deleted = ?", false)
	query = applyProductFilters(query, filter)

	var products []catalog.Product
	if err := applyFilter(query, filter).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByVendor finds the vendor's own products, delisted included
func (r *GormProductRepository) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("vendor_id = ?", vendorID)

	var products []catalog.Product
	if err := applyFilter(query, filter).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByIDs loads a batch of products by ID
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindIDsByVendor returns all product IDs owned by a vendor, delisted included
func (r *GormProductRepository) FindIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("vendor_id = ?", vendorID).
		Pluck("id", &ids).Error
	return ids, err
}

// FindLowStock finds listed products of a vendor at or below the threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context, vendorID uuid.UUID, threshold int) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND is_deleted = ? AND stock <= ?", vendorID, false, threshold).
		Order("stock ASC").
		Find(&products).Error
	return products, err
}

// Save creates or updates a product, writing pending domain events to the
// outbox in the same transaction
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}

		if r.outboxSaver != nil {
			events := product.GetDomainEvents()
			if len(events) > 0 {
				if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
					return err
				}
				product.ClearDomainEvents()
			}
		}

		return nil
	})
}

// Count counts non-delisted products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("is_deleted = ?", false)
	query = applyProductFilters(query, filter)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

// CountByVendor counts products owned by a vendor
func (r *GormProductRepository) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("vendor_id = ?", vendorID).
		Count(&count).Error
	return count, err
}

// DecrementStock atomically decrements stock with a guard against overselling.
// The conditional UPDATE touches zero rows when remaining stock is short, in
// which case ErrInsufficientStock is returned and the caller's transaction
// should roll back.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ? AND is_deleted = ? AND stock >= ?", id, false, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// IncrementStock atomically adds stock back, used for restocks on returns
func (r *GormProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// WithTx returns a repository bound to the given transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: tx, outboxSaver: r.outboxSaver}
}

func applyProductFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR brand LIKE ?", pattern, pattern)
	}
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	if brand, ok := filter.Filters["brand"].(string); ok && brand != "" {
		query = query.Where("brand = ?", brand)
	}
	return query
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
