package orchestrator

import (
	"math"
	"sync/atomic"

	"edugate/internal/core"
)

// counters are per-resource, monotonic and reporting only.
type counters struct {
	apiCalls      atomic.Int64
	cacheHits     atomic.Int64
	fallbacks     atomic.Int64
	skipped       atomic.Int64
	audioFailures atomic.Int64
}

func (c *counters) snapshot() core.Stats {
	calls := c.apiCalls.Load()
	hits := c.cacheHits.Load()
	return core.Stats{
		APICalls:      calls,
		CacheHits:     hits,
		CacheHitRate:  HitRate(hits, calls),
		Fallbacks:     c.fallbacks.Load(),
		Skipped:       c.skipped.Load(),
		AudioFailures: c.audioFailures.Load(),
	}
}

// HitRate returns hits / (hits + calls) as a percentage rounded to two
// decimals, or 0 when nothing was counted.
func HitRate(hits, calls int64) float64 {
	total := hits + calls
	if total == 0 {
		return 0
	}
	return math.Round(float64(hits)/float64(total)*100*100) / 100
}

// Stats returns the counters of one resource.
func (s *Service) Stats(resource core.Resource) core.Stats {
	c, ok := s.counters[resource]
	if !ok {
		return core.Stats{}
	}
	return c.snapshot()
}
