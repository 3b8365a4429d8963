package persistence

import (
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/notification"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/locallift/backend/internal/domain/review"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shopping"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates all tables from the domain models.
// Development convenience; production schemas are managed through the
// SQL files under migrations/.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&identity.User{},
		&identity.Address{},
		&catalog.Product{},
		&catalog.Category{},
		&order.Order{},
		&order.Item{},
		&order.TimelineEntry{},
		&order.VendorOrderEntry{},
		&promotion.Offer{},
		&inventory.StockEntry{},
		&review.Review{},
		&notification.Notification{},
		&shopping.Cart{},
		&shopping.CartItem{},
		&shopping.WishlistEntry{},
		&shared.OutboxEntry{},
	)
}
