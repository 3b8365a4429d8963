package shopping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// CartService maintains the user's single cart. Adding validates the
// product is listed and in stock at that moment; checkout re-validates
// against live stock, so the cart itself never reserves inventory.
type CartService struct {
	cartRepo    shopping.CartRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

func NewCartService(cartRepo shopping.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.Named("cart-service"),
	}
}

// Get returns the user's cart, creating an empty one on first access
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// AddItem puts a product into the cart, merging with an existing line of
// the same product and variant.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req AddCartItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindListed(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Stock < req.Quantity {
		return nil, shared.ErrInsufficientStock
	}

	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.AddItem(req.ProductID, req.Quantity, req.Color, req.Size); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// UpdateItem changes the quantity of one cart line
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateCartItemRequest) (*CartResponse, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.UpdateQuantity(itemID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// RemoveItem drops one line from the cart
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.ReplaceItems(ctx, cart); err != nil {
		return nil, err
	}
	return s.respond(ctx, cart)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	cart.Clear()
	return s.cartRepo.ReplaceItems(ctx, cart)
}

func (s *CartService) loadOrCreate(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	cart, err = shopping.NewCart(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// respond joins the cart lines against current product state
func (s *CartService) respond(ctx context.Context, cart *shopping.Cart) (*CartResponse, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for idx := range cart.Items {
		ids = append(ids, cart.Items[idx].ProductID)
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

	resp := buildCartResponse(cart, products)
	return &resp, nil
}
