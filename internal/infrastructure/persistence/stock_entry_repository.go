package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockEntryRepository implements StockEntryRepository using GORM. The
// ledger is append-only: entries are only ever inserted.
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// Save inserts a single ledger entry
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *inventory.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SaveAll inserts ledger entries in one statement
func (r *GormStockEntryRepository) SaveAll(ctx context.Context, entries []*inventory.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// SaveAllInTx inserts ledger entries inside an externally managed transaction
func (r *GormStockEntryRepository) SaveAllInTx(ctx context.Context, tx *gorm.DB, entries []*inventory.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&entries).Error
}

// FindByProduct returns the ledger for one product, newest first
func (r *GormStockEntryRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[inventory.StockEntry], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockEntry{}).
		Where("product_id = ?", productID)
	query = applyStockEntryFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []inventory.StockEntry
	if err := applyFilter(query, filter).Find(&entries).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindAll returns the whole ledger matching the filter, newest first
func (r *GormStockEntryRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[inventory.StockEntry], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockEntry{})
	query = applyStockEntryFilters(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []inventory.StockEntry
	if err := applyFilter(query, filter).Find(&entries).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &result, nil
}

func applyStockEntryFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if reason, ok := filter.Filters["reason"].(string); ok && reason != "" {
		query = query.Where("reason = ?", reason)
	}
	if reference, ok := filter.Filters["reference"].(string); ok && reference != "" {
		query = query.Where("reference = ?", reference)
	}
	return query
}

var _ inventory.StockEntryRepository = (*GormStockEntryRepository)(nil)
