package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService reads the stock ledger and the low-stock dashboard.
// Writes happen elsewhere: checkout and stock adjustments append ledger
// rows inside their own transactions.
type InventoryService struct {
	stockRepo   inventory.StockEntryRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

func NewInventoryService(stockRepo inventory.StockEntryRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		logger:      logger.Named("inventory-service"),
	}
}

// LedgerFilter narrows ledger listings
type LedgerFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Reason    string `form:"reason"`
	Reference string `form:"reference"`
}

// StockEntryResponse is one ledger row
type StockEntryResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	ActorID       uuid.UUID `json:"actor_id"`
	Change        int       `json:"change"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reason        string    `json:"reason"`
	Reference     string    `json:"reference,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LowStockProductResponse is one dashboard row for a product running out
type LowStockProductResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
}

// LedgerForProduct lists the ledger for one product, newest first.
// Vendors may only read the ledger of their own products.
func (s *InventoryService) LedgerForProduct(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID, filter LedgerFilter) (*shared.Paginated[StockEntryResponse], error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !product.IsOwnedBy(actorID) {
		return nil, shared.ErrForbidden
	}

	page, err := s.stockRepo.FindByProduct(ctx, productID, toLedgerDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return mapLedgerPage(page), nil
}

// Ledger lists the whole ledger for admins
func (s *InventoryService) Ledger(ctx context.Context, filter LedgerFilter) (*shared.Paginated[StockEntryResponse], error) {
	page, err := s.stockRepo.FindAll(ctx, toLedgerDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return mapLedgerPage(page), nil
}

// LowStock lists the vendor's products at or under the threshold,
// emptiest first.
func (s *InventoryService) LowStock(ctx context.Context, vendorID uuid.UUID, threshold int) ([]LowStockProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, vendorID, threshold)
	if err != nil {
		return nil, err
	}
	responses := make([]LowStockProductResponse, 0, len(products))
	for idx := range products {
		product := &products[idx]
		responses = append(responses, LowStockProductResponse{
			ProductID: product.ID,
			Name:      product.Name,
			Stock:     product.Stock,
			Price:     product.Price,
		})
	}
	return responses, nil
}

func toLedgerDomainFilter(filter LedgerFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "occurred_at"
	if filter.Reason != "" {
		domainFilter.Filters["reason"] = filter.Reason
	}
	if filter.Reference != "" {
		domainFilter.Filters["reference"] = filter.Reference
	}
	return domainFilter
}

func mapLedgerPage(page *shared.Paginated[inventory.StockEntry]) *shared.Paginated[StockEntryResponse] {
	items := make([]StockEntryResponse, 0, len(page.Items))
	for idx := range page.Items {
		entry := &page.Items[idx]
		items = append(items, StockEntryResponse{
			ID:            entry.ID,
			ProductID:     entry.ProductID,
			ActorID:       entry.ActorID,
			Change:        entry.Change,
			PreviousStock: entry.PreviousStock,
			NewStock:      entry.NewStock,
			Reason:        string(entry.Reason),
			Reference:     entry.Reference,
			OccurredAt:    entry.OccurredAt,
		})
	}
	return &shared.Paginated[StockEntryResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}
