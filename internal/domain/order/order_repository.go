package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the persistence interface for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Order, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Order], error)
	Save(ctx context.Context, o *Order) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	ExistsDeliveredWithProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}
