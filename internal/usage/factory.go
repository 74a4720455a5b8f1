package usage

import (
	"context"
	"errors"
	"fmt"

	"edugate/internal/storage"
)

// Result holds the ledger logger and the storage it owns.
// The caller must call Close during shutdown.
type Result struct {
	Logger  LoggerInterface
	Storage storage.Storage
}

// Close closes the logger first so buffered entries reach storage, then the storage.
func (r *Result) Close() error {
	var errs []error
	if r.Logger != nil {
		if err := r.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logger close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// New opens storage and builds a ledger logger. When the ledger is disabled
// it returns a NoopLogger and opens nothing.
func New(ctx context.Context, cfg Config, storageCfg storage.Config) (*Result, error) {
	if !cfg.Enabled {
		return &Result{Logger: &NoopLogger{}}, nil
	}

	store, err := storage.New(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	callStore, err := NewCallStore(ctx, store, cfg.RetentionDays)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Result{
		Logger:  NewLogger(callStore, cfg),
		Storage: store,
	}, nil
}

// NewCallStore creates the CallStore matching the storage backend.
func NewCallStore(ctx context.Context, store storage.Storage, retentionDays int) (CallStore, error) {
	switch store.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(store.SQLiteDB(), retentionDays)
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(ctx, store.PostgreSQLPool(), retentionDays)
	case storage.TypeMongoDB:
		return NewMongoDBStore(ctx, store.MongoDatabase(), retentionDays)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", store.Type())
	}
}
