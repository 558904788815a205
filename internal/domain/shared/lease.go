package shared

import (
	"context"
	"time"
)

// Lease grants a single owner exclusive use of a key for a bounded time.
// It keeps two processes from rendering the same recipe at once.
type Lease interface {
	// Acquire claims the key for owner. It returns false when another owner holds it.
	// Re-acquiring by the current owner extends the TTL.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// Release frees the key if owner still holds it
	Release(ctx context.Context, key, owner string) error

	// Close releases resources held by the lease backend
	Close() error
}
