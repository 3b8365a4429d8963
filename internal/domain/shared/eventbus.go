package shared

import "context"

// EventHandler consumes domain events. EventTypes narrows what the
// handler sees when it is subscribed without explicit types; an empty
// slice subscribes it to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher pushes events onto the bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber manages handler registrations. Subscribe with no
// event types falls back to the handler's own EventTypes.
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is the full in-process bus: publish, subscribe, and a
// Start/Stop lifecycle for its dispatch workers.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver writes domain events into the outbox table inside
// the caller's transaction, so an event row only exists if the state
// change that produced it committed. txProvider is a *gorm.DB; the
// interface keeps gorm out of the domain package.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
