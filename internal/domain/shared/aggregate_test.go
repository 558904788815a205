package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := NewBaseAggregateRoot()
	assert.Equal(t, 1, agg.GetVersion())
	assert.True(t, agg.IsNew())
	assert.Empty(t, agg.PullEvents())

	first := NewBaseDomainEvent("recipe.pdf_requested", "Recipe", 3)
	second := NewBaseDomainEvent("recipe.deleted", "Recipe", 3)
	agg.Record(&first)
	agg.Record(&second)

	events := agg.PullEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "recipe.pdf_requested", events[0].EventType())
	assert.Equal(t, "recipe.deleted", events[1].EventType())
	assert.NotEqual(t, events[0].EventID(), events[1].EventID())
	assert.Empty(t, agg.PullEvents(), "pulling drains the queue")
}

func TestBaseAggregateRoot_IncrementVersion(t *testing.T) {
	agg := NewBaseAggregateRoot()
	agg.IncrementVersion()
	agg.IncrementVersion()
	assert.Equal(t, 3, agg.GetVersion())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	created := e.CreatedAt
	time.Sleep(time.Millisecond)
	e.Touch()
	assert.True(t, e.UpdatedAt.After(created))
	assert.Equal(t, created, e.CreatedAt)

	e.ID = 9
	assert.False(t, e.IsNew())
}
