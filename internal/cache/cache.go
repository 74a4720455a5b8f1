// Package cache provides the per-resource cache stores and cache key derivation.
// Supports both in-memory and Redis backends; every store carries its own TTL.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a store after Close.
var ErrClosed = errors.New("cache: store is closed")

// Store is a key/value store whose entries expire after the store's TTL.
// Implementations must be safe for concurrent use.
type Store[V any] interface {
	// Get returns the value for key. Expired entries are reported as absent
	// regardless of whether a sweep has removed them yet.
	Get(ctx context.Context, key string) (V, bool, error)

	// Set stores value under key for the store's TTL.
	Set(ctx context.Context, key string, value V) error

	// SetWithTTL stores value under key with an explicit TTL.
	SetWithTTL(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete evicts key and reports whether it was present.
	Delete(ctx context.Context, key string) (bool, error)

	// Flush evicts every entry and returns how many were removed.
	Flush(ctx context.Context) (int, error)

	// Len returns the number of live entries.
	Len(ctx context.Context) (int, error)

	// TTL returns the store's default time-to-live.
	TTL() time.Duration

	// Close releases any resources held by the store.
	Close() error
}
