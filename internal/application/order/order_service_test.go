package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type lifecycleFixture struct {
	*checkoutFixture
	service *OrderService
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	f := newCheckoutFixture(t, config.CheckoutConfig{})
	return &lifecycleFixture{
		checkoutFixture: f,
		service: NewOrderService(
			f.orderRepo,
			f.entryRepo,
			f.productRepo,
			f.stockRepo,
			zap.NewNop(),
		),
	}
}

func (f *lifecycleFixture) placeOrder(t *testing.T, customerID, vendorID uuid.UUID, quantity int) *OrderResponse {
	t.Helper()
	product := f.seedProduct(t, vendorID, "Table Lamp", 75, 20)
	resp, err := f.checkoutFixture.service.Checkout(context.Background(), customerID, CheckoutRequest{
		Items:   []CheckoutItemInput{{ProductID: product.ID, Quantity: quantity}},
		Address: inlineAddress(),
	})
	require.NoError(t, err)
	return resp
}

func (f *lifecycleFixture) advance(t *testing.T, orderID uuid.UUID, statuses ...order.Status) {
	t.Helper()
	admin := Actor{ID: uuid.New(), IsAdmin: true}
	for _, status := range statuses {
		_, err := f.service.UpdateStatus(context.Background(), admin, orderID, UpdateStatusRequest{Status: string(status)})
		require.NoError(t, err)
	}
}

func TestOrderService_ActorRules(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	vendorID := uuid.New()

	t.Run("vendor advances own order through fulfillment", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)

		vendor := Actor{ID: vendorID, IsVendor: true}
		resp, err := f.service.UpdateStatus(ctx, vendor, placed.ID, UpdateStatusRequest{Status: "PROCESSING"})
		require.NoError(t, err)
		assert.Equal(t, "PROCESSING", resp.Status)
	})

	t.Run("unrelated vendor is rejected", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)

		stranger := Actor{ID: uuid.New(), IsVendor: true}
		_, err := f.service.UpdateStatus(ctx, stranger, placed.ID, UpdateStatusRequest{Status: "PROCESSING"})
		require.Error(t, err)
	})

	t.Run("vendor cannot cancel", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)

		vendor := Actor{ID: vendorID, IsVendor: true}
		_, err := f.service.UpdateStatus(ctx, vendor, placed.ID, UpdateStatusRequest{Status: "CANCELLED"})
		require.Error(t, err)
	})

	t.Run("customer cancel restocks", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 3)
		productID := placed.Items[0].ProductID

		before, err := f.productRepo.FindByID(ctx, productID)
		require.NoError(t, err)

		resp, err := f.service.Cancel(ctx, customerID, placed.ID, "changed my mind")
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)

		after, err := f.productRepo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, before.Stock+3, after.Stock)
	})

	t.Run("shipped order cannot be cancelled", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)
		f.advance(t, placed.ID, order.StatusProcessing, order.StatusShipped)

		_, err := f.service.Cancel(ctx, customerID, placed.ID, "")
		require.Error(t, err)
	})
}

func TestOrderService_Returns(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	vendorID := uuid.New()

	deliver := func(t *testing.T, f *lifecycleFixture, orderID uuid.UUID) {
		f.advance(t, orderID, order.StatusProcessing, order.StatusShipped, order.StatusDelivered)
	}

	t.Run("approved return restocks and moves to RETURNED", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 2)
		deliver(t, f, placed.ID)

		_, err := f.service.RequestReturn(ctx, customerID, placed.ID, ReturnRequestInput{Reason: "wrong size"})
		require.NoError(t, err)

		productID := placed.Items[0].ProductID
		before, err := f.productRepo.FindByID(ctx, productID)
		require.NoError(t, err)

		admin := Actor{ID: uuid.New(), IsAdmin: true}
		resp, err := f.service.DecideReturn(ctx, admin, placed.ID, ReturnDecisionRequest{Approve: true})
		require.NoError(t, err)
		assert.Equal(t, "RETURNED", resp.Status)
		assert.Equal(t, "APPROVED", resp.ReturnStatus)

		after, err := f.productRepo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, before.Stock+2, after.Stock)
	})

	t.Run("rejected return keeps order delivered", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)
		deliver(t, f, placed.ID)

		_, err := f.service.RequestReturn(ctx, customerID, placed.ID, ReturnRequestInput{Reason: "damaged"})
		require.NoError(t, err)

		admin := Actor{ID: uuid.New(), IsAdmin: true}
		resp, err := f.service.DecideReturn(ctx, admin, placed.ID, ReturnDecisionRequest{Approve: false, Note: "no defect found"})
		require.NoError(t, err)
		assert.Equal(t, "DELIVERED", resp.Status)
		assert.Equal(t, "REJECTED", resp.ReturnStatus)
	})

	t.Run("return before delivery is rejected", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)

		_, err := f.service.RequestReturn(ctx, customerID, placed.ID, ReturnRequestInput{Reason: "too slow"})
		require.Error(t, err)
	})

	t.Run("other customers cannot touch the order", func(t *testing.T) {
		f := newLifecycleFixture(t)
		placed := f.placeOrder(t, customerID, vendorID, 1)
		deliver(t, f, placed.ID)

		_, err := f.service.RequestReturn(ctx, uuid.New(), placed.ID, ReturnRequestInput{Reason: "not mine"})
		require.Error(t, err)
	})
}

func TestOrderService_ListByVendor(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(t)
	vendorID := uuid.New()

	mine := f.placeOrder(t, uuid.New(), vendorID, 1)
	f.placeOrder(t, uuid.New(), uuid.New(), 1)

	orders, total, err := f.service.ListByVendor(ctx, vendorID, OrderListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	t.Run("status filter", func(t *testing.T) {
		none, total, err := f.service.ListByVendor(ctx, vendorID, OrderListFilter{Status: string(order.StatusShipped)})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, none)
	})
}
