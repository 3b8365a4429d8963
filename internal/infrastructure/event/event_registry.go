package event

import (
	"github.com/locallift/backend/internal/domain/catalog"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/domain/order"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Catalog events
	serializer.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	serializer.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})
	serializer.Register(catalog.EventTypeProductDelisted, &catalog.ProductDelistedEvent{})

	// Identity events
	serializer.Register(identity.EventTypeUserRegistered, &identity.UserRegisteredEvent{})

	// Order events
	serializer.Register(order.EventTypeOrderPlaced, &order.OrderPlacedEvent{})
	serializer.Register(order.EventTypeOrderStatusChanged, &order.OrderStatusChangedEvent{})
	serializer.Register(order.EventTypeReturnRequested, &order.ReturnRequestedEvent{})
	serializer.Register(order.EventTypeReturnDecided, &order.ReturnDecidedEvent{})
	serializer.Register(order.EventTypeExchangeRequested, &order.ExchangeRequestedEvent{})
	serializer.Register(order.EventTypeExchangeDecided, &order.ExchangeDecidedEvent{})
}
