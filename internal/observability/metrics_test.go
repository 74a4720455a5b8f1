package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"edugate/internal/core"
	"edugate/internal/llmclient"
)

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("lesson", "hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("lesson", "miss"))

	RecordCacheLookup(core.ResourceLesson, true)
	RecordCacheLookup(core.ResourceLesson, false)
	RecordCacheLookup(core.ResourceLesson, false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("lesson", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("lesson", "miss")))
}

func TestUpstreamObserver(t *testing.T) {
	ok := testutil.ToFloat64(UpstreamRequests.WithLabelValues("image", "stability", "200"))
	failed := testutil.ToFloat64(UpstreamRequests.WithLabelValues("image", "stability", "error"))

	var obs llmclient.Observer = UpstreamObserver{}
	obs.ObserveRequest(context.Background(), llmclient.RequestInfo{
		Kind: "image", Provider: "stability", StatusCode: 200, Duration: time.Second,
	})
	obs.ObserveRequest(context.Background(), llmclient.RequestInfo{
		Kind: "image", Provider: "stability", Err: errors.New("dial failed"),
	})

	assert.Equal(t, ok+1, testutil.ToFloat64(UpstreamRequests.WithLabelValues("image", "stability", "200")))
	assert.Equal(t, failed+1, testutil.ToFloat64(UpstreamRequests.WithLabelValues("image", "stability", "error")))
}

func TestEventCounters(t *testing.T) {
	skips := testutil.ToFloat64(DiagramSkips)
	fallbacks := testutil.ToFloat64(Fallbacks.WithLabelValues("lesson"))
	audio := testutil.ToFloat64(AudioFailures.WithLabelValues("doubt-audio"))

	RecordDiagramSkip()
	RecordFallback(core.ResourceLesson)
	RecordAudioFailure(core.ResourceDoubtAudio)

	assert.Equal(t, skips+1, testutil.ToFloat64(DiagramSkips))
	assert.Equal(t, fallbacks+1, testutil.ToFloat64(Fallbacks.WithLabelValues("lesson")))
	assert.Equal(t, audio+1, testutil.ToFloat64(AudioFailures.WithLabelValues("doubt-audio")))
}
