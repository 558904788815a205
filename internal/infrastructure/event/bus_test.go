package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string, recipeID uint) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Recipe", recipeID)}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	entered    chan struct{}
	block      chan struct{}
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		close(h.entered)
		<-h.block
	}
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := startedBus(t)
	pdf := newTestHandler("recipe.pdf_requested")
	deleted := newTestHandler("recipe.deleted")
	bus.Subscribe(pdf)
	bus.Subscribe(deleted)

	event := newTestEvent("recipe.pdf_requested", 7)
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, pdf.getHandled(), 1)
	assert.Equal(t, event, pdf.getHandled()[0])
	assert.Empty(t, deleted.getHandled())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := startedBus(t)
	h := newTestHandler("recipe.pdf_requested")
	bus.Subscribe(h, "recipe.deleted")

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("recipe.pdf_requested", 1),
		newTestEvent("recipe.deleted", 1),
	))

	handled := h.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, "recipe.deleted", handled[0].EventType())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := startedBus(t)

	failing := newTestHandler("recipe.deleted")
	failing.err = errors.New("storage down")
	panicking := newTestHandler("recipe.deleted")
	panicking.panicWith = "boom"
	healthy := newTestHandler("recipe.deleted")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("recipe.deleted", 3)))
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	h := newTestHandler("recipe.deleted")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("recipe.deleted", 3)))
	assert.Empty(t, h.getHandled())
}

func TestInMemoryEventBus_PublishBeforeStartAndAfterStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newTestHandler("recipe.deleted")
	bus.Subscribe(h)

	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("recipe.deleted", 1)), ErrBusStopped)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("recipe.deleted", 1)), ErrBusStopped)
	assert.Empty(t, h.getHandled())
}

func TestInMemoryEventBus_StopWaitsForInflightDelivery(t *testing.T) {
	bus := startedBus(t)
	h := newTestHandler("recipe.deleted")
	h.entered = make(chan struct{})
	h.block = make(chan struct{})
	bus.Subscribe(h)

	published := make(chan struct{})
	go func() {
		_ = bus.Publish(context.Background(), newTestEvent("recipe.deleted", 1))
		close(published)
	}()

	select {
	case <-h.entered:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Stop(ctx), context.DeadlineExceeded)

	close(h.block)
	<-published
	require.NoError(t, bus.Stop(context.Background()))
	assert.Len(t, h.getHandled(), 1)
}
