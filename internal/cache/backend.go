package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"edugate/internal/core"
)

// Backend type constants
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// BackendConfig selects where resource stores keep their entries.
type BackendConfig struct {
	// Type is "memory" (default) or "redis"
	Type  string
	Redis RedisConfig
}

// Backend creates per-resource stores on a shared storage backend.
type Backend struct {
	kind   string
	prefix string
	client *redis.Client
}

// NewBackend initializes the backend described by cfg.
// The caller must call Close during shutdown.
func NewBackend(ctx context.Context, cfg BackendConfig) (*Backend, error) {
	switch cfg.Type {
	case "", TypeMemory:
		slog.Info("using in-memory cache")
		return &Backend{kind: TypeMemory}, nil

	case TypeRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		slog.Info("using redis cache", "prefix", prefix)
		return &Backend{kind: TypeRedis, prefix: prefix, client: client}, nil

	default:
		return nil, fmt.Errorf("unknown cache type: %s (valid: memory, redis)", cfg.Type)
	}
}

// Type returns the backend type.
func (b *Backend) Type() string {
	return b.kind
}

// Close releases the shared Redis client, if any.
func (b *Backend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// Open returns a store for one resource with its own TTL.
func Open[V any](b *Backend, resource core.Resource, ttl time.Duration) Store[V] {
	if b.kind == TypeRedis {
		return NewRedisStore[V](b.client, b.prefix+":"+string(resource), ttl)
	}
	return NewMemoryStore[V](ttl)
}
