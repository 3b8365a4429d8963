package shopping

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// WishlistService manages products saved for later. Saving is idempotent;
// the unique index backs up the application-level existence check.
type WishlistService struct {
	wishlistRepo shopping.WishlistRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

func NewWishlistService(wishlistRepo shopping.WishlistRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		logger:       logger.Named("wishlist-service"),
	}
}

// Add saves a listed product to the user's wishlist
func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.productRepo.FindListed(ctx, productID); err != nil {
		return err
	}
	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	entry, err := shopping.NewWishlistEntry(userID, productID)
	if err != nil {
		return err
	}
	return s.wishlistRepo.Save(ctx, entry)
}

// Remove drops a product from the wishlist
func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlistRepo.Delete(ctx, userID, productID)
}

// List returns the saved products joined with current catalog state.
// Delisted products stay listed but flagged unavailable so the client
// can offer removal.
func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]WishlistEntryResponse, error) {
	entries, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for idx := range entries {
		ids = append(ids, entries[idx].ProductID)
	}
	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) > 0 {
		found, err := s.productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for idx := range found {
			products[found[idx].ID] = &found[idx]
		}
	}

	responses := make([]WishlistEntryResponse, 0, len(entries))
	for idx := range entries {
		entry := &entries[idx]
		resp := WishlistEntryResponse{
			ProductID: entry.ProductID,
			SavedAt:   entry.CreatedAt,
		}
		if product, ok := products[entry.ProductID]; ok && !product.IsDeleted {
			resp.ProductName = product.Name
			resp.Price = product.Price
			resp.Available = true
			if len(product.Images) > 0 {
				resp.ProductImage = product.Images[0]
			}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
