package shopping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/shared"
)

// WishlistEntry marks one product saved for later by a user
type WishlistEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product,priority:2"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (WishlistEntry) TableName() string {
	return "wishlist_entries"
}

// NewWishlistEntry saves a product to a user's wishlist
func NewWishlistEntry(userID, productID uuid.UUID) (*WishlistEntry, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return &WishlistEntry{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}, nil
}

// WishlistRepository defines the persistence interface for wishlists
type WishlistRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]WishlistEntry, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Save(ctx context.Context, entry *WishlistEntry) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}
