package shared

import "context"

// EventHandler reacts to published events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types delivered to Handle when no explicit types are subscribed
	EventTypes() []string
}

// EventPublisher is the side of the bus the application services see
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus routes published events to subscribed handlers for the lifetime of the process
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
