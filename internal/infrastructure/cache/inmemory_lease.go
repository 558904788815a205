package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cookbook/api/internal/domain/shared"
)

// holder is the current owner of a leased key
type holder struct {
	owner     string
	expiresAt time.Time
}

// InMemoryLease implements shared.Lease with an in-process map.
// It only excludes workers of the same process.
type InMemoryLease struct {
	mu        sync.Mutex
	holders   map[string]holder
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLease creates a new in-memory lease.
// It starts a background goroutine to drop expired holders.
func NewInMemoryLease() *InMemoryLease {
	l := &InMemoryLease{
		holders:  make(map[string]holder),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire claims key for owner, or extends the claim if owner already holds it
func (l *InMemoryLease) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.holders[key]; ok && h.owner != owner && now.Before(h.expiresAt) {
		return false, nil
	}
	l.holders[key] = holder{owner: owner, expiresAt: now.Add(ttl)}
	return true, nil
}

// Release frees key if owner still holds it
func (l *InMemoryLease) Release(_ context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h, ok := l.holders[key]; ok && h.owner == owner {
		delete(l.holders, key)
	}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *InMemoryLease) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryLease) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLease) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, h := range l.holders {
		if !now.Before(h.expiresAt) {
			delete(l.holders, key)
		}
	}
}

// Size returns the number of held keys (for testing/monitoring)
func (l *InMemoryLease) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.holders)
}

var _ shared.Lease = (*InMemoryLease)(nil)
