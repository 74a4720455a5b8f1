// Package observability exposes Prometheus metrics for cache lookups and
// upstream collaborator calls.
package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"edugate/internal/core"
	"edugate/internal/llmclient"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edugate_cache_lookups_total",
			Help: "Cache lookups by resource and result",
		},
		[]string{"resource", "result"}, // result: hit, miss
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edugate_upstream_requests_total",
			Help: "Upstream collaborator round trips, including retries",
		},
		[]string{"collaborator", "provider", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edugate_upstream_request_duration_seconds",
			Help:    "Latency of upstream collaborator round trips",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 90},
		},
		[]string{"collaborator", "provider"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edugate_fallbacks_total",
			Help: "Responses synthesized locally after the collaborator returned unusable content",
		},
		[]string{"resource"},
	)

	DiagramSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edugate_diagram_skips_total",
			Help: "Diagram requests answered without an image because the topic is not visual",
		},
	)

	AudioFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edugate_audio_failures_total",
			Help: "Narration failures that were absorbed by the parent lesson or doubt",
		},
		[]string{"resource"},
	)
)

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(resource core.Resource, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(string(resource), result).Inc()
}

// RecordFallback counts one locally synthesized response.
func RecordFallback(resource core.Resource) {
	Fallbacks.WithLabelValues(string(resource)).Inc()
}

// RecordDiagramSkip counts one skipped diagram.
func RecordDiagramSkip() {
	DiagramSkips.Inc()
}

// RecordAudioFailure counts one absorbed narration failure.
func RecordAudioFailure(resource core.Resource) {
	AudioFailures.WithLabelValues(string(resource)).Inc()
}

// UpstreamObserver records upstream round trips. It implements llmclient.Observer.
type UpstreamObserver struct{}

// ObserveRequest records one round trip.
func (UpstreamObserver) ObserveRequest(_ context.Context, info llmclient.RequestInfo) {
	UpstreamRequests.WithLabelValues(info.Kind, info.Provider, statusLabel(info)).Inc()
	UpstreamDuration.WithLabelValues(info.Kind, info.Provider).Observe(info.Duration.Seconds())
}

func statusLabel(info llmclient.RequestInfo) string {
	if info.StatusCode == 0 {
		return "error"
	}
	return strconv.Itoa(info.StatusCode)
}
