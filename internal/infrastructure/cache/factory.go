// Package cache provides the render lease that keeps two workers, in this or
// another instance, from rendering the same recipe at once.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LeaseFactory creates render leases based on configuration
type LeaseFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LeaseFactoryOption is a functional option for configuring the factory
type LeaseFactoryOption func(*LeaseFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LeaseFactoryOption {
	return func(f *LeaseFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory lease when Redis is unavailable.
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) LeaseFactoryOption {
	return func(f *LeaseFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLeaseFactory creates a new factory
func NewLeaseFactory(cfg config.RedisConfig, opts ...LeaseFactoryOption) *LeaseFactory {
	f := &LeaseFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisLease creates a Redis-based lease
func (f *LeaseFactory) CreateRedisLease() (shared.Lease, error) {
	lease, err := NewRedisLease(RedisConfig{
		Host:      f.redisConfig.Host,
		Port:      f.redisConfig.Port,
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.redisConfig.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis render lease: %w", err)
	}
	return lease, nil
}

// CreateInMemoryLease creates an in-memory lease.
// WARNING: it does not exclude workers of other instances.
func (f *LeaseFactory) CreateInMemoryLease() shared.Lease {
	return NewInMemoryLease()
}

// CreateLease returns the in-memory lease unless Redis is enabled. An
// unreachable Redis falls back to in-memory when the factory allows it.
func (f *LeaseFactory) CreateLease() (shared.Lease, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory render lease")
		return f.CreateInMemoryLease(), nil
	}

	lease, err := f.CreateRedisLease()
	if err == nil {
		f.logger.Info("using Redis render lease",
			zap.String("addr", fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port)))
		return lease, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for render lease but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory render lease. "+
		"Instances sharing the database may render the same recipe concurrently.",
		zap.Error(err),
	)
	return f.CreateInMemoryLease(), nil
}

// AcquireWait polls lease until key is acquired for owner or ctx ends
func AcquireWait(ctx context.Context, lease shared.Lease, key, owner string, ttl, poll time.Duration) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		ok, err := lease.Acquire(ctx, key, owner, ttl)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
