package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisPrefix namespaces every key written by the gateway.
	DefaultRedisPrefix = "edugate"

	scanBatchSize = 500
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379" or "redis://:password@host:6379/0")
	URL string

	// Prefix is prepended to every store namespace (defaults to "edugate")
	Prefix string
}

// NewRedisClient parses the URL and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisStore implements Store on a shared Redis client.
// Values are JSON encoded and live under "<namespace>:<key>". Several stores
// may share one client with different TTLs.
type RedisStore[V any] struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store for one namespace. The client is owned by
// the caller; Close does not close it.
func NewRedisStore[V any](client *redis.Client, namespace string, ttl time.Duration) *RedisStore[V] {
	return &RedisStore[V]{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (s *RedisStore[V]) fullKey(key string) string {
	return s.namespace + ":" + key
}

// Get retrieves and decodes a value. Redis expires keys itself.
func (s *RedisStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var value V
	data, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		// A value we cannot decode is as good as absent; drop it so the next fetch replaces it.
		slog.Warn("discarding undecodable cache entry", "namespace", s.namespace, "key", key, "error", err)
		_ = s.client.Del(ctx, s.fullKey(key)).Err()
		var zero V
		return zero, false, nil
	}
	return value, true, nil
}

// Set stores value for the store TTL.
func (s *RedisStore[V]) Set(ctx context.Context, key string, value V) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

// SetWithTTL stores value with an explicit TTL. A non-positive TTL stores nothing.
func (s *RedisStore[V]) SetWithTTL(ctx context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

// Delete evicts key.
func (s *RedisStore[V]) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, s.fullKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return n > 0, nil
}

// Flush deletes every key in the namespace.
func (s *RedisStore[V]) Flush(ctx context.Context) (int, error) {
	removed := 0
	err := s.scan(ctx, func(keys []string) error {
		n, err := s.client.Del(ctx, keys...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to flush %s: %w", s.namespace, err)
	}
	return removed, nil
}

// Len counts keys in the namespace.
func (s *RedisStore[V]) Len(ctx context.Context) (int, error) {
	count := 0
	err := s.scan(ctx, func(keys []string) error {
		count += len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.namespace, err)
	}
	return count, nil
}

func (s *RedisStore[V]) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.namespace+":*", scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// TTL returns the store TTL.
func (s *RedisStore[V]) TTL() time.Duration {
	return s.ttl
}

// Close is a no-op; the shared client is closed by its owner.
func (s *RedisStore[V]) Close() error {
	return nil
}

var _ Store[string] = (*RedisStore[string])(nil)
