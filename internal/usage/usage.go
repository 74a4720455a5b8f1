// Package usage records one ledger entry per upstream collaborator call.
// The ledger is for auditing spend; cache behavior and counters never read it.
package usage

import (
	"context"
	"time"
)

// Outcome values stored on ledger entries.
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
	OutcomeFallback    = "fallback"
)

// CallStore defines the interface for ledger storage backends.
// Implementations must be safe for concurrent use.
type CallStore interface {
	// WriteBatch writes multiple entries to storage.
	WriteBatch(ctx context.Context, entries []*Entry) error

	// Flush forces any pending writes to complete.
	Flush(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Entry is one upstream call, or one locally synthesized fallback.
type Entry struct {
	ID        string    `json:"id" bson:"_id"`
	RequestID string    `json:"request_id" bson:"request_id"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`

	Resource     string `json:"resource" bson:"resource"`
	Collaborator string `json:"collaborator" bson:"collaborator"`
	Provider     string `json:"provider" bson:"provider"`
	Model        string `json:"model" bson:"model"`
	Endpoint     string `json:"endpoint" bson:"endpoint"`
	CacheKey     string `json:"cache_key" bson:"cache_key"`

	StatusCode int    `json:"status_code" bson:"status_code"`
	DurationMs int64  `json:"duration_ms" bson:"duration_ms"`
	Outcome    string `json:"outcome" bson:"outcome"`
	Fallback   bool   `json:"fallback" bson:"fallback"`
	Error      string `json:"error,omitempty" bson:"error,omitempty"`
}

// Config holds ledger configuration
type Config struct {
	// Enabled controls whether the ledger is active
	Enabled bool

	// BufferSize is the number of entries buffered before writes are dropped
	BufferSize int

	// FlushInterval is how often to flush buffered entries
	FlushInterval time.Duration

	// RetentionDays is how long to keep entries (0 = forever)
	RetentionDays int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		RetentionDays: 30,
	}
}
