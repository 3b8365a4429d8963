package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID, including delisted ones
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindListed finds a non-delisted product by its ID
	FindListed(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds all non-delisted products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindByVendor finds all products owned by a vendor
	FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindIDsByVendor returns the ids of every product owned by a vendor,
	// including delisted ones (needed for order attribution)
	FindIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error)

	// FindLowStock finds non-delisted vendor products at or below the threshold
	FindLowStock(ctx context.Context, vendorID uuid.UUID, threshold int) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Count counts non-delisted products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByVendor counts products owned by a vendor
	CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error)

	// DecrementStock atomically decrements stock by quantity when enough
	// stock is available. Returns shared.ErrInsufficientStock when the
	// conditional update matches no row.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error

	// IncrementStock atomically increases stock by quantity
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}
