package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/inventory"
	"github.com/locallift/backend/internal/domain/promotion"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/locallift/backend/internal/infrastructure/config"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	db          *gorm.DB
	service     *CheckoutService
	productRepo *persistence.GormProductRepository
	stockRepo   *persistence.GormStockEntryRepository
	entryRepo   *persistence.GormVendorOrderEntryRepository
	offerRepo   *persistence.GormOfferRepository
	orderRepo   *persistence.GormOrderRepository
}

func newCheckoutFixture(t *testing.T, cfg config.CheckoutConfig) *checkoutFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	f := &checkoutFixture{
		db:          db,
		productRepo: persistence.NewGormProductRepository(db),
		stockRepo:   persistence.NewGormStockEntryRepository(db),
		entryRepo:   persistence.NewGormVendorOrderEntryRepository(db),
		offerRepo:   persistence.NewGormOfferRepository(db),
		orderRepo:   persistence.NewGormOrderRepository(db),
	}
	f.service = NewCheckoutService(
		db,
		f.orderRepo,
		f.productRepo,
		f.entryRepo,
		f.stockRepo,
		f.offerRepo,
		persistence.NewGormUserRepository(db),
		persistence.NewGormCartRepository(db),
		cfg,
		zap.NewNop(),
	)
	return f
}

func (f *checkoutFixture) seedProduct(t *testing.T, vendorID uuid.UUID, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(vendorID, name, "", "General", valueobject.NewMoneyUSDFromInt(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Save(context.Background(), product))
	return product
}

func inlineAddress() *ShippingAddressInput {
	return &ShippingAddressInput{
		Line1:      "44 Pine Road",
		City:       "Austin",
		PostalCode: "73301",
		Country:    "US",
	}
}

func TestCheckoutService_PlacesOrder(t *testing.T) {
	f := newCheckoutFixture(t, config.CheckoutConfig{})
	ctx := context.Background()

	vendorA := uuid.New()
	vendorB := uuid.New()
	shoes := f.seedProduct(t, vendorA, "Running Shoes", 100, 10)
	bottle := f.seedProduct(t, vendorB, "Water Bottle", 50, 10)
	customerID := uuid.New()

	resp, err := f.service.Checkout(ctx, customerID, CheckoutRequest{
		Items: []CheckoutItemInput{
			{ProductID: shoes.ID, Quantity: 2},
			{ProductID: bottle.ID, Quantity: 1},
		},
		Address: inlineAddress(),
	})
	require.NoError(t, err)

	t.Run("totals and status", func(t *testing.T) {
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, resp.SubTotal.Equal(decimal.NewFromInt(250)))
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(250)))
	})

	t.Run("stock decremented", func(t *testing.T) {
		found, err := f.productRepo.FindByID(ctx, shoes.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, found.Stock)
	})

	t.Run("ledger written with invariant intact", func(t *testing.T) {
		page, err := f.stockRepo.FindByProduct(ctx, shoes.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		entry := page.Items[0]
		assert.Equal(t, -2, entry.Change)
		assert.Equal(t, entry.PreviousStock+entry.Change, entry.NewStock)
		assert.Equal(t, inventory.ReasonOrder, entry.Reason)
	})

	t.Run("vendor index rows split revenue per vendor", func(t *testing.T) {
		forA, err := f.entryRepo.FindByVendor(ctx, vendorA, nil)
		require.NoError(t, err)
		require.Len(t, forA, 1)
		assert.True(t, forA[0].Revenue.Equal(decimal.NewFromInt(200)))

		forB, err := f.entryRepo.FindByVendor(ctx, vendorB, nil)
		require.NoError(t, err)
		require.Len(t, forB, 1)
		assert.True(t, forB[0].Revenue.Equal(decimal.NewFromInt(50)))
	})

	t.Run("item snapshots carry vendor and price", func(t *testing.T) {
		o, err := f.orderRepo.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		require.Len(t, o.Items, 2)
		for idx := range o.Items {
			assert.NotNil(t, o.Items[idx].VendorID)
			assert.False(t, o.Items[idx].UnitPrice.IsZero())
		}
	})
}

func TestCheckoutService_AtomicRollback(t *testing.T) {
	f := newCheckoutFixture(t, config.CheckoutConfig{})
	ctx := context.Background()

	vendorID := uuid.New()
	plenty := f.seedProduct(t, vendorID, "T-Shirt", 20, 100)
	scarce := f.seedProduct(t, vendorID, "Limited Print", 200, 1)
	customerID := uuid.New()

	_, err := f.service.Checkout(ctx, customerID, CheckoutRequest{
		Items: []CheckoutItemInput{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
		Address: inlineAddress(),
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	t.Run("no stock was taken from any product", func(t *testing.T) {
		found, err := f.productRepo.FindByID(ctx, plenty.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, found.Stock, "earlier line's decrement must roll back")
	})

	t.Run("no order, ledger or index rows persisted", func(t *testing.T) {
		count, err := f.orderRepo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		page, err := f.stockRepo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, page.Total)

		entries, err := f.entryRepo.FindByVendor(ctx, vendorID, nil)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestCheckoutService_Oversell(t *testing.T) {
	f := newCheckoutFixture(t, config.CheckoutConfig{})
	ctx := context.Background()

	product := f.seedProduct(t, uuid.New(), "Popular Gadget", 80, 3)

	_, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
		Items:   []CheckoutItemInput{{ProductID: product.ID, Quantity: 3}},
		Address: inlineAddress(),
	})
	require.NoError(t, err)

	_, err = f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
		Items:   []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
		Address: inlineAddress(),
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	found, err := f.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.Stock, "stock never goes negative")
}

func TestCheckoutService_Coupons(t *testing.T) {
	ctx := context.Background()

	seedOffer := func(t *testing.T, f *checkoutFixture, code string, value int64) *promotion.Offer {
		offer, err := promotion.NewOffer(code, "", promotion.DiscountPercentage,
			decimal.NewFromInt(value), decimal.Zero,
			time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, f.offerRepo.Save(ctx, offer))
		return offer
	}

	t.Run("valid coupon discounts and counts a redemption", func(t *testing.T) {
		f := newCheckoutFixture(t, config.CheckoutConfig{})
		product := f.seedProduct(t, uuid.New(), "Blender", 1000, 5)
		offer := seedOffer(t, f, "SAVE10", 10)

		resp, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:      []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
			CouponCode: "SAVE10",
			Address:    inlineAddress(),
		})
		require.NoError(t, err)
		assert.True(t, resp.Discount.Equal(decimal.NewFromInt(100)), "ten percent of 1000 is 100")
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(900)))

		found, err := f.offerRepo.FindByID(ctx, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.RedemptionCount)
	})

	t.Run("invalid coupon fails checkout in strict mode", func(t *testing.T) {
		f := newCheckoutFixture(t, config.CheckoutConfig{})
		product := f.seedProduct(t, uuid.New(), "Toaster", 60, 5)

		_, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:      []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
			CouponCode: "GHOST",
			Address:    inlineAddress(),
		})
		require.Error(t, err)

		found, err := f.productRepo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.Stock, "failed checkout must not consume stock")
	})

	t.Run("invalid coupon is ignored in lenient mode", func(t *testing.T) {
		f := newCheckoutFixture(t, config.CheckoutConfig{LenientCoupon: true})
		product := f.seedProduct(t, uuid.New(), "Kettle", 40, 5)

		resp, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:      []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
			CouponCode: "GHOST",
			Address:    inlineAddress(),
		})
		require.NoError(t, err)
		assert.True(t, resp.Discount.IsZero())
		assert.Empty(t, resp.CouponCode)
	})

	t.Run("category scoped coupon discounts matching lines only", func(t *testing.T) {
		f := newCheckoutFixture(t, config.CheckoutConfig{})
		pan := f.seedProduct(t, uuid.New(), "Frying Pan", 200, 5)
		lamp, err := catalog.NewProduct(uuid.New(), "Desk Lamp", "", "Lighting", valueobject.NewMoneyUSDFromInt(300), 5)
		require.NoError(t, err)
		require.NoError(t, f.productRepo.Save(ctx, lamp))

		offer := seedOffer(t, f, "KITCHEN10", 10)
		require.NoError(t, offer.RestrictToCategory("General"))
		require.NoError(t, f.offerRepo.Save(ctx, offer))

		resp, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
			Items: []CheckoutItemInput{
				{ProductID: pan.ID, Quantity: 1},
				{ProductID: lamp.ID, Quantity: 1},
			},
			CouponCode: "KITCHEN10",
			Address:    inlineAddress(),
		})
		require.NoError(t, err)
		assert.True(t, resp.Discount.Equal(decimal.NewFromInt(20)), "ten percent of the 200 in-scope line")
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(480)))
	})

	t.Run("fixed discount is capped at the cart total", func(t *testing.T) {
		f := newCheckoutFixture(t, config.CheckoutConfig{})
		product := f.seedProduct(t, uuid.New(), "Socks", 1000, 5)

		offer, err := promotion.NewOffer("BIGFIXED", "", promotion.DiscountFixed,
			decimal.NewFromInt(5000), decimal.Zero,
			time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		require.NoError(t, f.offerRepo.Save(ctx, offer))

		resp, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
			Items:      []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
			CouponCode: "BIGFIXED",
			Address:    inlineAddress(),
		})
		require.NoError(t, err)
		assert.True(t, resp.Discount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, resp.TotalAmount.IsZero())
	})
}

func TestCheckoutService_LedgerChainsRepeatedLines(t *testing.T) {
	f := newCheckoutFixture(t, config.CheckoutConfig{})
	ctx := context.Background()

	product := f.seedProduct(t, uuid.New(), "Poster Print", 15, 10)

	// the same product twice in one request: each ledger row must start
	// from the stock level the previous decrement left behind
	_, err := f.service.Checkout(ctx, uuid.New(), CheckoutRequest{
		Items: []CheckoutItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 3},
		},
		Address: inlineAddress(),
	})
	require.NoError(t, err)

	found, err := f.productRepo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 5, found.Stock)

	page, err := f.stockRepo.FindByProduct(ctx, product.ID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)

	byChange := map[int]inventory.StockEntry{}
	for _, entry := range page.Items {
		assert.Equal(t, entry.PreviousStock+entry.Change, entry.NewStock)
		byChange[entry.Change] = entry
	}
	assert.Equal(t, 10, byChange[-2].PreviousStock)
	assert.Equal(t, 8, byChange[-3].PreviousStock)
	assert.Equal(t, 5, byChange[-3].NewStock, "final ledger row matches the product's stock")
}

func TestCheckoutService_EmptyOrder(t *testing.T) {
	f := newCheckoutFixture(t, config.CheckoutConfig{})

	_, err := f.service.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		Address: inlineAddress(),
	})
	require.Error(t, err)
}
