package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/notification"
	orderdomain "github.com/locallift/backend/internal/domain/order"
	"github.com/locallift/backend/internal/domain/shared"
	"github.com/locallift/backend/internal/infrastructure/notify"
	"go.uber.org/zap"
)

// OrderEventsHandler turns order lifecycle events into inbox entries and
// mails. It runs on the event bus after the outbox relay, so a failure
// here never rolls back the order that caused it.
type OrderEventsHandler struct {
	notificationRepo  notification.NotificationRepository
	productRepo       catalog.ProductRepository
	userRepo          identity.UserRepository
	mailer            notify.Mailer
	lowStockThreshold int
	logger            *zap.Logger
}

var _ shared.EventHandler = (*OrderEventsHandler)(nil)

func NewOrderEventsHandler(
	notificationRepo notification.NotificationRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	mailer notify.Mailer,
	lowStockThreshold int,
	logger *zap.Logger,
) *OrderEventsHandler {
	return &OrderEventsHandler{
		notificationRepo:  notificationRepo,
		productRepo:       productRepo,
		userRepo:          userRepo,
		mailer:            mailer,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.Named("order-events"),
	}
}

// EventTypes lists the order events this handler consumes
func (h *OrderEventsHandler) EventTypes() []string {
	return []string{
		orderdomain.EventTypeOrderPlaced,
		orderdomain.EventTypeOrderStatusChanged,
		orderdomain.EventTypeReturnRequested,
		orderdomain.EventTypeReturnDecided,
		orderdomain.EventTypeExchangeRequested,
		orderdomain.EventTypeExchangeDecided,
	}
}

// Handle dispatches on the concrete event type
func (h *OrderEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *orderdomain.OrderPlacedEvent:
		return h.handleOrderPlaced(ctx, e)
	case *orderdomain.OrderStatusChangedEvent:
		return h.handleStatusChanged(ctx, e)
	case *orderdomain.ReturnRequestedEvent:
		return h.notifyVendors(ctx, e.VendorIDs, notification.KindReturnRequest,
			"Return requested",
			fmt.Sprintf("A customer requested a return on order %s: %s", shortID(e.AggregateID()), e.Reason),
			e.AggregateID())
	case *orderdomain.ExchangeRequestedEvent:
		return h.notifyVendors(ctx, e.VendorIDs, notification.KindReturnRequest,
			"Exchange requested",
			fmt.Sprintf("A customer requested an exchange on order %s: %s", shortID(e.AggregateID()), e.Reason),
			e.AggregateID())
	case *orderdomain.ReturnDecidedEvent:
		return h.notifyCustomer(ctx, e.CustomerID, notification.KindReturnDecided,
			"Return "+decision(e.Approved),
			fmt.Sprintf("Your return request on order %s was %s", shortID(e.AggregateID()), decision(e.Approved)),
			e.AggregateID())
	case *orderdomain.ExchangeDecidedEvent:
		return h.notifyCustomer(ctx, e.CustomerID, notification.KindReturnDecided,
			"Exchange "+decision(e.Approved),
			fmt.Sprintf("Your exchange request on order %s was %s", shortID(e.AggregateID()), decision(e.Approved)),
			e.AggregateID())
	default:
		h.logger.Debug("ignoring event", zap.String("type", event.EventType()))
		return nil
	}
}

// handleOrderPlaced fans the order out to every vendor with a line item,
// then checks whether the sale pushed any product under the low-stock
// threshold.
func (h *OrderEventsHandler) handleOrderPlaced(ctx context.Context, e *orderdomain.OrderPlacedEvent) error {
	if err := h.notifyVendors(ctx, e.VendorIDs, notification.KindOrderPlaced,
		"New order received",
		fmt.Sprintf("Order %s includes your products", shortID(e.AggregateID())),
		e.AggregateID()); err != nil {
		return err
	}
	h.mailOrderConfirmation(ctx, e)
	h.checkLowStock(ctx, e)
	return nil
}

// mailOrderConfirmation sends the buyer their order confirmation. Like the
// shipping mail, delivery is best-effort.
func (h *OrderEventsHandler) mailOrderConfirmation(ctx context.Context, e *orderdomain.OrderPlacedEvent) {
	user, err := h.userRepo.FindByID(ctx, e.CustomerID)
	if err != nil {
		h.logger.Warn("cannot mail order confirmation",
			zap.String("customer_id", e.CustomerID.String()), zap.Error(err))
		return
	}
	mail := notify.Mail{
		To:      user.Email,
		Subject: fmt.Sprintf("Order %s confirmed", shortID(e.AggregateID())),
		Body: fmt.Sprintf("Hi %s, we received your order %s for a total of %s.",
			user.Name, shortID(e.AggregateID()), e.TotalAmount.StringFixed(2)),
	}
	if err := h.mailer.Send(ctx, mail); err != nil {
		h.logger.Warn("confirmation mail failed", zap.Error(err))
	}
}

func (h *OrderEventsHandler) handleStatusChanged(ctx context.Context, e *orderdomain.OrderStatusChangedEvent) error {
	if err := h.notifyCustomer(ctx, e.CustomerID, notification.KindOrderStatus,
		fmt.Sprintf("Order %s", e.ToStatus),
		fmt.Sprintf("Your order %s is now %s", shortID(e.AggregateID()), e.ToStatus),
		e.AggregateID()); err != nil {
		return err
	}

	if e.ToStatus == orderdomain.StatusShipped {
		h.mailShippedOrder(ctx, e)
	}
	return nil
}

// checkLowStock inspects current stock for every ordered product and
// notifies the owning vendor when it sits at or under the threshold.
// Failures are logged: stock alerts are advisory.
func (h *OrderEventsHandler) checkLowStock(ctx context.Context, e *orderdomain.OrderPlacedEvent) {
	if h.lowStockThreshold <= 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := h.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		h.logger.Warn("low stock check failed", zap.Error(err))
		return
	}

	for idx := range products {
		product := &products[idx]
		if product.Stock > h.lowStockThreshold || product.VendorID == nil {
			continue
		}
		n, err := notification.NewNotification(*product.VendorID, notification.KindLowStock,
			"Low stock alert",
			fmt.Sprintf("%s is down to %d units", product.Name, product.Stock), nil)
		if err != nil {
			continue
		}
		if err := h.notificationRepo.Save(ctx, n); err != nil {
			h.logger.Warn("failed to save low stock alert",
				zap.String("product_id", product.ID.String()), zap.Error(err))
		}
	}
}

// mailShippedOrder sends the shipping confirmation mail. Mail delivery is
// best-effort: the inbox entry above is the source of truth.
func (h *OrderEventsHandler) mailShippedOrder(ctx context.Context, e *orderdomain.OrderStatusChangedEvent) {
	user, err := h.userRepo.FindByID(ctx, e.CustomerID)
	if err != nil {
		h.logger.Warn("cannot mail shipping confirmation",
			zap.String("customer_id", e.CustomerID.String()), zap.Error(err))
		return
	}
	mail := notify.Mail{
		To:      user.Email,
		Subject: fmt.Sprintf("Your order %s has shipped", shortID(e.AggregateID())),
		Body:    fmt.Sprintf("Hi %s, your order %s is on its way.", user.Name, shortID(e.AggregateID())),
	}
	if err := h.mailer.Send(ctx, mail); err != nil {
		h.logger.Warn("shipping mail failed", zap.Error(err))
	}
}

func (h *OrderEventsHandler) notifyVendors(ctx context.Context, vendorIDs []uuid.UUID, kind notification.Kind, title, message string, orderID uuid.UUID) error {
	notifications := make([]*notification.Notification, 0, len(vendorIDs))
	for _, vendorID := range vendorIDs {
		n, err := notification.NewNotification(vendorID, kind, title, message, &orderID)
		if err != nil {
			return err
		}
		notifications = append(notifications, n)
	}
	if len(notifications) == 0 {
		return nil
	}
	return h.notificationRepo.SaveAll(ctx, notifications)
}

func (h *OrderEventsHandler) notifyCustomer(ctx context.Context, customerID uuid.UUID, kind notification.Kind, title, message string, orderID uuid.UUID) error {
	n, err := notification.NewNotification(customerID, kind, title, message, &orderID)
	if err != nil {
		return err
	}
	return h.notificationRepo.Save(ctx, n)
}

func decision(approved bool) string {
	if approved {
		return "approved"
	}
	return "rejected"
}

// shortID renders the first UUID block, enough for customer-facing copy
func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
