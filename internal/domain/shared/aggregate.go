package shared

// BaseAggregateRoot adds optimistic locking and an outgoing event queue to an entity.
// Events are queued by behaviour methods and drained by the application service
// once the write has committed.
type BaseAggregateRoot struct {
	BaseEntity
	// Version is compared on every update; a mismatch is ErrConcurrencyConflict
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot starts at version 1 with no queued events
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// GetVersion returns the version the aggregate was loaded or saved with
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion is called by the repository after a successful update
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// Record queues an event for publication
func (a *BaseAggregateRoot) Record(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// PullEvents returns the queued events and empties the queue
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}
