package usage

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edugate/internal/core"
	"edugate/internal/llmclient"
)

type captureLogger struct {
	mu      sync.Mutex
	entries []*Entry
}

func (c *captureLogger) Write(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

func (c *captureLogger) Config() Config { return Config{Enabled: true} }
func (c *captureLogger) Close() error   { return nil }

type fakeCollaborator struct{}

func (fakeCollaborator) Name() string  { return "openai" }
func (fakeCollaborator) Model() string { return "gpt-4o-mini" }

func taggedContext() context.Context {
	ctx := core.WithRequestID(context.Background(), "req-1")
	return core.WithResource(ctx, core.ResourceLesson, "lesson:gravity:5:en")
}

func TestRecorder_ObserveRequest(t *testing.T) {
	logger := &captureLogger{}
	rec := NewRecorder(logger)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	rec.ObserveRequest(taggedContext(), llmclient.RequestInfo{
		Provider:   "openai",
		Kind:       "text",
		Model:      "gpt-4o-mini",
		Endpoint:   "/chat/completions",
		StatusCode: http.StatusOK,
		Duration:   1500 * time.Millisecond,
	})

	require.Len(t, logger.entries, 1)
	e := logger.entries[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, fixed, e.Timestamp)
	assert.Equal(t, "lesson", e.Resource)
	assert.Equal(t, "lesson:gravity:5:en", e.CacheKey)
	assert.Equal(t, "text", e.Collaborator)
	assert.Equal(t, "/chat/completions", e.Endpoint)
	assert.Equal(t, int64(1500), e.DurationMs)
	assert.Equal(t, OutcomeSuccess, e.Outcome)
	assert.False(t, e.Fallback)
	assert.Empty(t, e.Error)
}

func TestRecorder_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		info llmclient.RequestInfo
		want string
	}{
		{"ok", llmclient.RequestInfo{StatusCode: 200}, OutcomeSuccess},
		{"throttled status", llmclient.RequestInfo{StatusCode: 429}, OutcomeRateLimited},
		{"throttled error", llmclient.RequestInfo{Err: core.NewRateLimitError("openai", "slow down")}, OutcomeRateLimited},
		{"server error", llmclient.RequestInfo{StatusCode: 503}, OutcomeError},
		{"transport error", llmclient.RequestInfo{Err: errors.New("dial tcp: refused")}, OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeOf(tt.info))
		})
	}
}

func TestRecorder_RecordFallback(t *testing.T) {
	logger := &captureLogger{}
	rec := NewRecorder(logger)

	rec.RecordFallback(taggedContext(), fakeCollaborator{}, "text")

	require.Len(t, logger.entries, 1)
	e := logger.entries[0]
	assert.True(t, e.Fallback)
	assert.Equal(t, OutcomeFallback, e.Outcome)
	assert.Equal(t, "openai", e.Provider)
	assert.Equal(t, "gpt-4o-mini", e.Model)
	assert.Equal(t, "lesson", e.Resource)
}

func TestRecorder_NilLogger(t *testing.T) {
	rec := NewRecorder(nil)
	assert.NotPanics(t, func() {
		rec.ObserveRequest(context.Background(), llmclient.RequestInfo{StatusCode: 200})
	})
}
