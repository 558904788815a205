// Package event provides the in-process bus that carries recipe events from
// the request path to the PDF job handler.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cookbook/api/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish once the bus has been stopped
var ErrBusStopped = errors.New("event bus is stopped")

// InMemoryEventBus dispatches events synchronously to subscribed handlers.
// A failing or panicking handler is logged and does not stop delivery to the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger

	// mu is held for reading by every Publish so Stop can wait for deliveries
	mu      sync.RWMutex
	running bool
}

// NewInMemoryEventBus creates a stopped bus. Call Start before publishing.
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers each event to its handlers in subscription order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.running {
		return ErrBusStopped
	}

	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Uint("aggregate_id", event.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for the handler's own EventTypes when none are given
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start opens the bus for publishing
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	b.logger.Info("event bus started", zap.Strings("event_types", b.registry.EventTypes()))
	return nil
}

// Stop closes the bus and waits for in-flight deliveries or ctx, whichever ends first
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
