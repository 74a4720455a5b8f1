package orchestrator

import (
	"context"
	"log/slog"

	"edugate/internal/cache"
	"edugate/internal/core"
)

// lookupOrFetch returns the cached value for key, or fetches, stores and
// returns a fresh one. fetch counts the upstream call (or fallback) it made.
// Concurrent misses for the same key share one fetch, which is not tied to
// the cancellation of whichever caller started it.
// Cache backend errors degrade to a miss; they never fail the request.
func lookupOrFetch[V any](ctx context.Context, s *Service, resource core.Resource, store cache.Store[V], key string, fetch func(ctx context.Context) (V, error)) (V, bool, error) {
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		slog.Warn("cache lookup failed, treating as miss",
			"request_id", core.GetRequestID(ctx),
			"resource", resource,
			"error", err,
		)
	}
	if ok {
		s.counters[resource].cacheHits.Add(1)
		s.lookupHook(resource, true)
		return value, true, nil
	}
	s.lookupHook(resource, false)

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	ch := s.inflight.DoChan(string(resource)+"|"+key, func() (any, error) {
		fetchCtx := core.WithResource(context.WithoutCancel(ctx), resource, key)
		fresh, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if err := store.Set(fetchCtx, key, fresh); err != nil {
			slog.Warn("cache store failed",
				"request_id", core.GetRequestID(ctx),
				"resource", resource,
				"error", err,
			)
		}
		return fresh, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		return res.Val.(V), false, nil
	}
}

func (s *Service) lookupHook(resource core.Resource, hit bool) {
	if s.hooks.OnCacheLookup != nil {
		s.hooks.OnCacheLookup(resource, hit)
	}
}
