package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shopping"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser finds a user's cart with items preloaded
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	var cart shopping.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Save creates or updates a cart together with its items
func (r *GormCartRepository) Save(ctx context.Context, cart *shopping.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(cart).Error; err != nil {
			return err
		}
		return r.replaceItemsInTx(tx, cart)
	})
}

// ReplaceItems swaps the cart's stored items for the aggregate's current
// ones. Line merging and quantity math happen on the aggregate; storage just
// mirrors the result.
func (r *GormCartRepository) ReplaceItems(ctx context.Context, cart *shopping.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.replaceItemsInTx(tx, cart)
	})
}

func (r *GormCartRepository) replaceItemsInTx(tx *gorm.DB, cart *shopping.Cart) error {
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&shopping.CartItem{}).Error; err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
	}
	return tx.Create(&cart.Items).Error
}

var _ shopping.CartRepository = (*GormCartRepository)(nil)
