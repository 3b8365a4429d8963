package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ProductService handles catalog operations for vendors, admins and buyers
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	stockRepo    inventory.StockEntryRepository
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	stockRepo inventory.StockEntryRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		stockRepo:    stockRepo,
		logger:       logger,
	}
}

// Create lists a new product for the vendor
func (s *ProductService) Create(ctx context.Context, vendorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	price := valueobject.NewMoneyUSD(req.Price)
	product, err := catalog.NewProduct(vendorID, req.Name, req.Description, req.Category, price, req.Stock)
	if err != nil {
		return nil, err
	}
	if req.Brand != "" {
		if err := product.Update(req.Name, req.Description, req.Category, req.Brand); err != nil {
			return nil, err
		}
	}
	if req.OriginalPrice != nil {
		original := valueobject.NewMoneyUSD(*req.OriginalPrice)
		if err := product.SetPrice(price, &original); err != nil {
			return nil, err
		}
	}
	product.SetVariants(req.Colors, req.Sizes)
	product.SetImages(req.Images)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.ensureCategory(ctx, req.Category)

	// Opening stock goes on the ledger so the audit trail starts at zero.
	if req.Stock > 0 {
		entry, err := inventory.NewStockEntry(product.ID, vendorID, req.Stock, 0, inventory.ReasonAdjustment, "initial stock")
		if err == nil {
			if err := s.stockRepo.Save(ctx, entry); err != nil {
				s.logger.Error("Failed to record opening stock", zap.Error(err))
			}
		}
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("vendor_id", vendorID.String()))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update changes listing details. Only the owning vendor or an admin may
// update.
func (s *ProductService) Update(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !product.IsOwnedBy(actorID) {
		return nil, shared.ErrForbidden
	}

	if err := product.Update(req.Name, req.Description, req.Category, req.Brand); err != nil {
		return nil, err
	}
	price := valueobject.NewMoneyUSD(req.Price)
	var original *valueobject.Money
	if req.OriginalPrice != nil {
		o := valueobject.NewMoneyUSD(*req.OriginalPrice)
		original = &o
	}
	if err := product.SetPrice(price, original); err != nil {
		return nil, err
	}
	product.SetVariants(req.Colors, req.Sizes)
	product.SetImages(req.Images)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.ensureCategory(ctx, req.Category)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delist hides a product from buyers. Line-item snapshots on existing orders
// keep resolving.
func (s *ProductService) Delist(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !isAdmin && !product.IsOwnedBy(actorID) {
		return shared.ErrForbidden
	}
	if err := product.Delist(); err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}

	s.logger.Info("Product delisted", zap.String("product_id", productID.String()))
	return nil
}

// AdjustStock applies a manual signed stock change with a ledger entry
func (s *ProductService) AdjustStock(ctx context.Context, actorID uuid.UUID, isAdmin bool, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !product.IsOwnedBy(actorID) {
		return nil, shared.ErrForbidden
	}

	entry, err := inventory.NewStockEntry(product.ID, actorID, req.Change, product.Stock, inventory.ReasonAdjustment, req.Note)
	if err != nil {
		return nil, err
	}

	if req.Change > 0 {
		err = s.productRepo.IncrementStock(ctx, productID, req.Change)
	} else {
		err = s.productRepo.DecrementStock(ctx, productID, -req.Change)
	}
	if err != nil {
		return nil, err
	}

	if err := s.stockRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	product.Stock = entry.NewStock
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID returns a listed product for buyers
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindListed(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns listed products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// ListByVendor returns the vendor's own products, delisted included
func (s *ProductService) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindByVendor(ctx, vendorID, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountByVendor(ctx, vendorID)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// ListCategories returns all known categories
func (s *ProductService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, 0, len(categories))
	for idx := range categories {
		responses = append(responses, CategoryResponse{
			ID:   categories[idx].ID,
			Name: categories[idx].Name,
		})
	}
	return responses, nil
}

// ensureCategory registers the category name if it is new. Failures only log;
// the category table is navigation metadata, not a constraint.
func (s *ProductService) ensureCategory(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if _, err := s.categoryRepo.FindByName(ctx, name); err == nil {
		return
	}
	category, err := catalog.NewCategory(name, "")
	if err != nil {
		return
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Warn("Failed to register category", zap.String("name", name), zap.Error(err))
	}
}

func toDomainFilter(filter ProductListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Brand != "" {
		domainFilter.Filters["brand"] = filter.Brand
	}
	return domainFilter
}
