package shared

import "context"

// EventHandler consumes domain events delivered by the bus
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. An empty slice
	// subscribes the handler to everything.
	EventTypes() []string
}

// EventPublisher is the side of the bus application services see: after a
// unit of work commits, the aggregate's collected events go through here.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber registers and removes handlers
type EventSubscriber interface {
	// Subscribe registers a handler. With no explicit types the handler's
	// own EventTypes decide what it receives.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publishing and subscription with lifecycle control
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
