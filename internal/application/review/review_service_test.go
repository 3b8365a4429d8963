package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type reviewFixture struct {
	svc         *ReviewService
	orderRepo   *persistence.GormOrderRepository
	productRepo *persistence.GormProductRepository
	userRepo    *persistence.GormUserRepository
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))

	reviewRepo := persistence.NewGormReviewRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	userRepo := persistence.NewGormUserRepository(db)

	return &reviewFixture{
		svc:         NewReviewService(reviewRepo, orderRepo, productRepo, userRepo, zap.NewNop()),
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

func (f *reviewFixture) seedCustomer(t *testing.T, name string) uuid.UUID {
	t.Helper()
	user, err := identity.NewUser(name, name+"@example.com", "Secret123!", identity.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Save(context.Background(), user))
	return user.ID
}

func (f *reviewFixture) seedProduct(t *testing.T) uuid.UUID {
	t.Helper()
	product, err := catalog.NewProduct(uuid.New(), "Trail Shoes", "Grippy soles", "footwear",
		valueobject.NewMoneyUSDFromInt(90), 20)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Save(context.Background(), product))
	return product.ID
}

// seedDeliveredOrder places an order containing the product and walks it
// to DELIVERED so the purchase gate opens.
func (f *reviewFixture) seedDeliveredOrder(t *testing.T, customerID, productID uuid.UUID) {
	t.Helper()
	o, err := order.NewOrder(customerID, order.ShippingAddress{
		Line1:      "5 Harbor Road",
		City:       "Portsmouth",
		PostalCode: "03801",
		Country:    "US",
	})
	require.NoError(t, err)
	vendorID := uuid.New()
	_, err = o.AddItem(productID, &vendorID, "Trail Shoes", "", "", "", 1, valueobject.NewMoneyUSDFromInt(90))
	require.NoError(t, err)
	require.NoError(t, o.Place())
	for _, status := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		require.NoError(t, o.TransitionTo(status, ""))
	}
	require.NoError(t, f.orderRepo.Save(context.Background(), o))
}

func TestReviewService_PurchaseGate(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t)

	t.Run("no purchase no review", func(t *testing.T) {
		stranger := f.seedCustomer(t, "mallory")
		_, err := f.svc.Create(ctx, stranger, productID, CreateReviewRequest{Rating: 5})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PURCHASE_REQUIRED", domainErr.Code)
	})

	t.Run("delivered purchase can review once", func(t *testing.T) {
		buyer := f.seedCustomer(t, "alice")
		f.seedDeliveredOrder(t, buyer, productID)

		created, err := f.svc.Create(ctx, buyer, productID, CreateReviewRequest{Rating: 4, Comment: "solid"})
		require.NoError(t, err)
		assert.Equal(t, "alice", created.UserName)

		_, err = f.svc.Create(ctx, buyer, productID, CreateReviewRequest{Rating: 5})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_REVIEWED", domainErr.Code)
	})
}

func TestReviewService_StatsRollup(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t)

	ratings := []int{5, 3, 4}
	for i, rating := range ratings {
		buyer := f.seedCustomer(t, []string{"ann", "ben", "cho"}[i])
		f.seedDeliveredOrder(t, buyer, productID)
		_, err := f.svc.Create(ctx, buyer, productID, CreateReviewRequest{Rating: rating})
		require.NoError(t, err)
	}

	product, err := f.productRepo.FindByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, product.NumReviews)
	assert.InDelta(t, 4.0, product.Rating, 0.001)
}

func TestReviewService_EditAndDelete(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t)
	buyer := f.seedCustomer(t, "dana")
	f.seedDeliveredOrder(t, buyer, productID)

	created, err := f.svc.Create(ctx, buyer, productID, CreateReviewRequest{Rating: 2, Comment: "meh"})
	require.NoError(t, err)

	t.Run("author edits own review", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, buyer, created.ID, UpdateReviewRequest{Rating: 4, Comment: "grew on me"})
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)

		product, err := f.productRepo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, product.Rating, 0.001)
	})

	t.Run("others cannot edit", func(t *testing.T) {
		stranger := f.seedCustomer(t, "eve")
		_, err := f.svc.Update(ctx, stranger, created.ID, UpdateReviewRequest{Rating: 1})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("delete clears the aggregate", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(ctx, buyer, false, created.ID))
		product, err := f.productRepo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 0, product.NumReviews)
		assert.InDelta(t, 0.0, product.Rating, 0.001)
	})
}
