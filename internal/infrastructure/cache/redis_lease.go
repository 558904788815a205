package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultLeasePrefix = "cookbook:render-lease:"

// extendScript refreshes the TTL only while the caller still owns the key
var extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`)

// releaseScript deletes the key only while the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// RedisLease implements shared.Lease using Redis, so workers of every
// instance sharing the database exclude each other.
type RedisLease struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisLease connects to Redis and verifies the connection
func NewRedisLease(cfg RedisConfig) (*RedisLease, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLeaseWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisLeaseWithClient creates a lease with an existing Redis client
func NewRedisLeaseWithClient(client *redis.Client, keyPrefix string) *RedisLease {
	if keyPrefix == "" {
		keyPrefix = defaultLeasePrefix
	}
	return &RedisLease{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire claims key with SET NX PX, or extends the claim if owner already holds it
func (l *RedisLease) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	fullKey := l.keyPrefix + key

	ok, err := l.client.SetNX(ctx, fullKey, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease: %w", err)
	}
	if ok {
		return true, nil
	}

	extended, err := extendScript.Run(ctx, l.client, []string{fullKey}, owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to extend lease: %w", err)
	}
	return extended == 1, nil
}

// Release deletes key if owner still holds it
func (l *RedisLease) Release(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, owner).Err(); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisLease) Close() error {
	return l.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (l *RedisLease) GetClient() *redis.Client {
	return l.client
}

var _ shared.Lease = (*RedisLease)(nil)
