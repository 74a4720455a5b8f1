package usage

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"edugate/internal/core"
	"edugate/internal/llmclient"
)

// Recorder turns upstream round trips and local fallbacks into ledger entries.
// It implements llmclient.Observer.
type Recorder struct {
	logger LoggerInterface
	now    func() time.Time
}

// NewRecorder creates a Recorder writing to logger. A nil logger records nothing.
func NewRecorder(logger LoggerInterface) *Recorder {
	if logger == nil {
		logger = &NoopLogger{}
	}
	return &Recorder{logger: logger, now: time.Now}
}

// ObserveRequest writes one entry per upstream attempt.
func (r *Recorder) ObserveRequest(ctx context.Context, info llmclient.RequestInfo) {
	entry := r.newEntry(ctx)
	entry.Collaborator = info.Kind
	entry.Provider = info.Provider
	entry.Model = info.Model
	entry.Endpoint = info.Endpoint
	entry.StatusCode = info.StatusCode
	entry.DurationMs = info.Duration.Milliseconds()
	entry.Outcome = outcomeOf(info)
	if info.Err != nil {
		entry.Error = info.Err.Error()
	}
	r.logger.Write(entry)
}

// RecordFallback writes an entry for content synthesized locally instead of
// by the collaborator.
func (r *Recorder) RecordFallback(ctx context.Context, collaborator core.Collaborator, kind string) {
	entry := r.newEntry(ctx)
	entry.Collaborator = kind
	if collaborator != nil {
		entry.Provider = collaborator.Name()
		entry.Model = collaborator.Model()
	}
	entry.Outcome = OutcomeFallback
	entry.Fallback = true
	r.logger.Write(entry)
}

func (r *Recorder) newEntry(ctx context.Context) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		RequestID: core.GetRequestID(ctx),
		Timestamp: r.now().UTC(),
		Resource:  string(core.GetResource(ctx)),
		CacheKey:  core.GetCacheKey(ctx),
	}
}

func outcomeOf(info llmclient.RequestInfo) string {
	switch {
	case info.StatusCode == http.StatusTooManyRequests || core.IsRateLimit(info.Err):
		return OutcomeRateLimited
	case info.Err != nil:
		return OutcomeError
	case info.StatusCode >= 200 && info.StatusCode < 300:
		return OutcomeSuccess
	default:
		return OutcomeError
	}
}
