package cache

import (
	"context"
	"sync"
	"time"
)

const (
	minSweepInterval = time.Second
	maxSweepInterval = 10 * time.Minute
)

// MemoryStore implements Store with an in-process map.
// A background sweeper removes expired entries to bound memory; Get never
// relies on it and rechecks expiry itself.
type MemoryStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[V]
	ttl     time.Duration
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now           func() time.Time
	sweepInterval time.Duration
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// WithSweepInterval overrides the sweep interval. A negative value disables sweeping.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.sweepInterval = d }
}

// SweepInterval returns the default sweep period for a TTL: a tenth of it,
// clamped to [1s, 10m].
func SweepInterval(ttl time.Duration) time.Duration {
	d := ttl / 10
	if d < minSweepInterval {
		return minSweepInterval
	}
	if d > maxSweepInterval {
		return maxSweepInterval
	}
	return d
}

// NewMemoryStore creates an in-memory store with the given TTL and starts its sweeper.
// The caller must call Close to stop the sweeper.
func NewMemoryStore[V any](ttl time.Duration, opts ...MemoryOption) *MemoryStore[V] {
	o := memoryOptions{now: time.Now, sweepInterval: SweepInterval(ttl)}
	for _, opt := range opts {
		opt(&o)
	}

	s := &MemoryStore[V]{
		entries: make(map[string]memoryEntry[V]),
		ttl:     ttl,
		now:     o.now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if o.sweepInterval > 0 {
		go s.sweepLoop(o.sweepInterval)
	} else {
		close(s.done)
	}
	return s
}

// Get retrieves a live value.
func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		// Re-read under the write lock: a concurrent Set may have refreshed it.
		if current, ok := s.entries[key]; ok && !s.now().Before(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false, nil
	}
	return entry.value, true, nil
}

// Set stores value for the store TTL.
func (s *MemoryStore[V]) Set(ctx context.Context, key string, value V) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

// SetWithTTL stores value with an explicit TTL. A non-positive TTL stores nothing.
func (s *MemoryStore[V]) SetWithTTL(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry[V]{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete evicts key.
func (s *MemoryStore[V]) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	delete(s.entries, key)
	return s.now().Before(entry.expiresAt), nil
}

// Flush evicts all entries and returns how many were live.
func (s *MemoryStore[V]) Flush(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for _, entry := range s.entries {
		if now.Before(entry.expiresAt) {
			count++
		}
	}
	s.entries = make(map[string]memoryEntry[V])
	return count, nil
}

// Len counts live entries.
func (s *MemoryStore[V]) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	count := 0
	for _, entry := range s.entries {
		if now.Before(entry.expiresAt) {
			count++
		}
	}
	return count, nil
}

// TTL returns the store TTL.
func (s *MemoryStore[V]) TTL() time.Duration {
	return s.ttl
}

// Close stops the sweeper. Safe to call multiple times.
func (s *MemoryStore[V]) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

// Sweep removes expired entries and returns how many were removed.
func (s *MemoryStore[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore[V]) sweepLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

var _ Store[string] = (*MemoryStore[string])(nil)
