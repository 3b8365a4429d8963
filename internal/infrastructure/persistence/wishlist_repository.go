package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shopping"
	"gorm.io/gorm"
)

// GormWishlistRepository implements WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// FindByUser returns a user's wishlist entries, newest first
func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]shopping.WishlistEntry, error) {
	var entries []shopping.WishlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// Exists reports whether the product is already on the user's wishlist
func (r *GormWishlistRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&shopping.WishlistEntry{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// Save inserts a wishlist entry
func (r *GormWishlistRepository) Save(ctx context.Context, entry *shopping.WishlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Delete removes a product from the user's wishlist
func (r *GormWishlistRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&shopping.WishlistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ shopping.WishlistRepository = (*GormWishlistRepository)(nil)
