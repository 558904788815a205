package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about an aggregate, published after the write that caused it
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uint
	AggregateType() string
}

// BaseDomainEvent implements DomainEvent for embedding in concrete events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	Timestamp time.Time `json:"occurred_at"`
	AggID     uint      `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

// NewBaseDomainEvent assigns a fresh id and the current time
func NewBaseDomainEvent(eventType, aggType string, aggID uint) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uint     { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string { return e.AggType }
