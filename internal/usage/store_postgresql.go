package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertPostgreSQL = `
	INSERT INTO ` + tableName + ` (id, request_id, timestamp, resource, collaborator, provider,
		model, endpoint, cache_key, status_code, duration_ms, outcome, fallback, error)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO NOTHING
`

// PostgreSQLStore implements CallStore for PostgreSQL databases.
type PostgreSQLStore struct {
	pool          *pgxpool.Pool
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewPostgreSQLStore creates the ledger table if needed and starts retention
// cleanup when retentionDays is positive.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName+` (
			id UUID PRIMARY KEY,
			request_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			resource TEXT NOT NULL,
			collaborator TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			cache_key TEXT NOT NULL,
			status_code INTEGER NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			fallback BOOLEAN NOT NULL DEFAULT FALSE,
			error TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_calls_timestamp ON " + tableName + "(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_calls_request_id ON " + tableName + "(request_id)",
		"CREATE INDEX IF NOT EXISTS idx_calls_resource ON " + tableName + "(resource)",
		"CREATE INDEX IF NOT EXISTS idx_calls_provider ON " + tableName + "(provider)",
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &PostgreSQLStore{
		pool:          pool,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go RunCleanupLoop(store.stopCleanup, CleanupInterval, store.cleanup)
	}

	return store, nil
}

// WriteBatch inserts entries. Small batches go row by row; larger ones are
// queued on a single pgx.Batch inside a transaction.
func (s *PostgreSQLStore) WriteBatch(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) < 10 {
		return s.writeBatchSmall(ctx, entries)
	}
	return s.writeBatchLarge(ctx, entries)
}

func (s *PostgreSQLStore) writeBatchSmall(ctx context.Context, entries []*Entry) error {
	var errs []error
	for _, e := range entries {
		if _, err := s.pool.Exec(ctx, insertPostgreSQL, entryArgs(e)...); err != nil {
			slog.Warn("failed to insert ledger entry", "error", err, "id", e.ID)
			errs = append(errs, fmt.Errorf("insert %s: %w", e.ID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to insert %d of %d ledger entries: %w", len(errs), len(entries), errors.Join(errs...))
	}
	return nil
}

func (s *PostgreSQLStore) writeBatchLarge(ctx context.Context, entries []*Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertPostgreSQL, entryArgs(e)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert %d ledger entries: %w", len(entries), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func entryArgs(e *Entry) []any {
	return []any{
		e.ID, e.RequestID, e.Timestamp, e.Resource, e.Collaborator, e.Provider,
		e.Model, e.Endpoint, e.CacheKey, e.StatusCode, e.DurationMs, e.Outcome, e.Fallback, e.Error,
	}
}

// Flush is a no-op for PostgreSQL as writes are synchronous.
func (s *PostgreSQLStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. The pool belongs to the storage layer.
func (s *PostgreSQLStore) Close() error {
	if s.retentionDays > 0 {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

func (s *PostgreSQLStore) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.pool.Exec(ctx, "DELETE FROM "+tableName+" WHERE timestamp < $1",
		retentionCutoff(time.Now(), s.retentionDays))
	if err != nil {
		slog.Error("failed to clean up old ledger entries", "error", err)
		return
	}

	if result.RowsAffected() > 0 {
		slog.Info("cleaned up old ledger entries", "deleted", result.RowsAffected())
	}
}
