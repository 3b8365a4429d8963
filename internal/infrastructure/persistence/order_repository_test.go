package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOrder(t *testing.T, customerID uuid.UUID, vendorID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder(customerID, order.ShippingAddress{
		Line1:      "12 Market Street",
		City:       "Springfield",
		PostalCode: "62701",
		Country:    "US",
	})
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), &vendorID, "Running Shoes", "", "Black", "42", 2, valueobject.NewMoneyUSDFromInt(100))
	require.NoError(t, err)
	require.NoError(t, o.Place())
	return o
}

func TestGormOrderRepository_SaveAndReload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	vendorID := uuid.New()
	o := buildOrder(t, customerID, vendorID)
	require.NoError(t, repo.Save(ctx, o))

	t.Run("reloads items and timeline", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, found.Status)
		require.Len(t, found.Items, 1)
		assert.Equal(t, 2, found.Items[0].Quantity)
		assert.True(t, found.TotalAmount.Equal(o.TotalAmount))
		require.NotEmpty(t, found.Timeline)
		assert.Equal(t, order.StatusPending, found.Timeline[0].Status)
	})

	t.Run("status change appends timeline on resave", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.NoError(t, found.TransitionTo(order.StatusProcessing, "payment confirmed"))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing, reloaded.Status)
		assert.Len(t, reloaded.Timeline, 2)
	})

	t.Run("lists orders for customer only", func(t *testing.T) {
		other := buildOrder(t, uuid.New(), vendorID)
		require.NoError(t, repo.Save(ctx, other))

		page, err := repo.FindByCustomer(ctx, customerID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}

func TestGormOrderRepository_ExistsDeliveredWithProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	vendorID := uuid.New()
	productID := uuid.New()

	o, err := order.NewOrder(customerID, order.ShippingAddress{Line1: "1 Elm", City: "Boston", Country: "US"})
	require.NoError(t, err)
	_, err = o.AddItem(productID, &vendorID, "Coffee Grinder", "", "", "", 1, valueobject.NewMoneyUSDFromInt(50))
	require.NoError(t, err)
	require.NoError(t, o.Place())
	require.NoError(t, repo.Save(ctx, o))

	t.Run("false before delivery", func(t *testing.T) {
		ok, err := repo.ExistsDeliveredWithProduct(ctx, customerID, productID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("true after delivery", func(t *testing.T) {
		require.NoError(t, o.TransitionTo(order.StatusProcessing, ""))
		require.NoError(t, o.TransitionTo(order.StatusShipped, ""))
		require.NoError(t, o.TransitionTo(order.StatusDelivered, ""))
		require.NoError(t, repo.Save(ctx, o))

		ok, err := repo.ExistsDeliveredWithProduct(ctx, customerID, productID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("false for another customer", func(t *testing.T) {
		ok, err := repo.ExistsDeliveredWithProduct(ctx, uuid.New(), productID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGormVendorOrderEntryRepository(t *testing.T) {
	db := setupTestDB(t)
	orderRepo := NewGormOrderRepository(db)
	entryRepo := NewGormVendorOrderEntryRepository(db)
	ctx := context.Background()

	vendorA := uuid.New()
	vendorB := uuid.New()

	o, err := order.NewOrder(uuid.New(), order.ShippingAddress{Line1: "5 Oak", City: "Denver", Country: "US"})
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), &vendorA, "Headphones", "", "", "", 2, valueobject.NewMoneyUSDFromInt(100))
	require.NoError(t, err)
	_, err = o.AddItem(uuid.New(), &vendorB, "Charger", "", "", "", 1, valueobject.NewMoneyUSDFromInt(50))
	require.NoError(t, err)
	require.NoError(t, o.Place())
	require.NoError(t, orderRepo.Save(ctx, o))

	entries := make([]order.VendorOrderEntry, 0, 2)
	for _, vendorID := range o.VendorIDs() {
		entries = append(entries, order.NewVendorOrderEntry(o, vendorID))
	}
	require.NoError(t, entryRepo.SaveAll(ctx, entries))

	t.Run("each vendor sees only its own revenue", func(t *testing.T) {
		forA, err := entryRepo.FindByVendor(ctx, vendorA, nil)
		require.NoError(t, err)
		require.Len(t, forA, 1)
		assert.True(t, forA[0].Revenue.Equal(valueobject.NewMoneyUSDFromInt(200).Amount()))
		assert.Equal(t, 2, forA[0].Units)

		forB, err := entryRepo.FindByVendor(ctx, vendorB, nil)
		require.NoError(t, err)
		require.Len(t, forB, 1)
		assert.True(t, forB[0].Revenue.Equal(valueobject.NewMoneyUSDFromInt(50).Amount()))
	})

	t.Run("status mirror updates every vendor row", func(t *testing.T) {
		require.NoError(t, entryRepo.UpdateStatusByOrder(ctx, o.ID, order.StatusShipped))

		forA, err := entryRepo.FindByVendor(ctx, vendorA, nil)
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, forA[0].Status)

		forB, err := entryRepo.FindByVendor(ctx, vendorB, nil)
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, forB[0].Status)
	})
}
