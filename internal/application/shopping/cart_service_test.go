package shopping

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type shoppingFixture struct {
	cart        *CartService
	wishlist    *WishlistService
	productRepo *persistence.GormProductRepository
}

func newShoppingFixture(t *testing.T) *shoppingFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	productRepo := persistence.NewGormProductRepository(db)
	return &shoppingFixture{
		cart:        NewCartService(persistence.NewGormCartRepository(db), productRepo, zap.NewNop()),
		wishlist:    NewWishlistService(persistence.NewGormWishlistRepository(db), productRepo, zap.NewNop()),
		productRepo: productRepo,
	}
}

func (f *shoppingFixture) seedProduct(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), name, "", "misc", valueobject.NewMoneyUSDFromInt(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Save(context.Background(), product))
	return product
}

func TestCartService_Lifecycle(t *testing.T) {
	f := newShoppingFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	shoes := f.seedProduct(t, "Shoes", 100, 10)
	socks := f.seedProduct(t, "Socks", 10, 50)

	t.Run("first access yields an empty cart", func(t *testing.T) {
		cart, err := f.cart.Get(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.True(t, cart.SubTotal.IsZero())
	})

	t.Run("adding computes the subtotal", func(t *testing.T) {
		_, err := f.cart.AddItem(ctx, userID, AddCartItemRequest{ProductID: shoes.ID, Quantity: 2})
		require.NoError(t, err)
		cart, err := f.cart.AddItem(ctx, userID, AddCartItemRequest{ProductID: socks.ID, Quantity: 3})
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		assert.True(t, decimal.NewFromInt(230).Equal(cart.SubTotal), "subtotal: %s", cart.SubTotal)
	})

	t.Run("same product and variant merges lines", func(t *testing.T) {
		cart, err := f.cart.AddItem(ctx, userID, AddCartItemRequest{ProductID: shoes.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Len(t, cart.Items, 2)
	})

	t.Run("adding beyond stock is rejected", func(t *testing.T) {
		_, err := f.cart.AddItem(ctx, userID, AddCartItemRequest{ProductID: shoes.ID, Quantity: 100})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("update and remove", func(t *testing.T) {
		cart, err := f.cart.Get(ctx, userID)
		require.NoError(t, err)
		line := cart.Items[0]

		updated, err := f.cart.UpdateItem(ctx, userID, line.ID, UpdateCartItemRequest{Quantity: 5})
		require.NoError(t, err)
		found := false
		for _, item := range updated.Items {
			if item.ID == line.ID {
				assert.Equal(t, 5, item.Quantity)
				found = true
			}
		}
		assert.True(t, found)

		afterRemove, err := f.cart.RemoveItem(ctx, userID, line.ID)
		require.NoError(t, err)
		assert.Len(t, afterRemove.Items, 1)
	})

	t.Run("clear empties the cart", func(t *testing.T) {
		require.NoError(t, f.cart.Clear(ctx, userID))
		cart, err := f.cart.Get(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})
}

func TestCartService_DelistedProduct(t *testing.T) {
	f := newShoppingFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	lamp := f.seedProduct(t, "Desk Lamp", 40, 5)
	_, err := f.cart.AddItem(ctx, userID, AddCartItemRequest{ProductID: lamp.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, lamp.Delist())
	require.NoError(t, f.productRepo.Save(ctx, lamp))

	cart, err := f.cart.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.False(t, cart.Items[0].Available)
	assert.True(t, cart.SubTotal.IsZero(), "delisted lines do not count toward the subtotal")
}

func TestWishlistService(t *testing.T) {
	f := newShoppingFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	mug := f.seedProduct(t, "Mug", 15, 30)

	require.NoError(t, f.wishlist.Add(ctx, userID, mug.ID))

	t.Run("saving twice is idempotent", func(t *testing.T) {
		require.NoError(t, f.wishlist.Add(ctx, userID, mug.ID))
		entries, err := f.wishlist.List(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, "Mug", entries[0].ProductName)
		assert.True(t, entries[0].Available)
	})

	t.Run("unknown product cannot be saved", func(t *testing.T) {
		err := f.wishlist.Add(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, f.wishlist.Remove(ctx, userID, mug.ID))
		entries, err := f.wishlist.List(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
