package usage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edugate/internal/storage"
)

func newSQLiteStorage(t *testing.T) storage.Storage {
	t.Helper()
	st, err := storage.NewSQLite(storage.SQLiteConfig{Path: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func countRows(t *testing.T, st storage.Storage) int {
	t.Helper()
	var n int
	require.NoError(t, st.SQLiteDB().QueryRow("SELECT COUNT(*) FROM "+tableName).Scan(&n))
	return n
}

func TestSQLiteStore_WriteBatch(t *testing.T) {
	st := newSQLiteStorage(t)
	store, err := NewSQLiteStore(st.SQLiteDB(), 0)
	require.NoError(t, err)
	defer store.Close()

	// More than one chunk
	entries := make([]*Entry, 0, 150)
	for i := 0; i < 150; i++ {
		entries = append(entries, &Entry{
			ID:           fmt.Sprintf("id-%03d", i),
			RequestID:    "req",
			Timestamp:    time.Now(),
			Resource:     "audio",
			Collaborator: "speech",
			Provider:     "google",
			Model:        "wavenet",
			Endpoint:     "/text:synthesize",
			CacheKey:     "audio:abc",
			StatusCode:   200,
			DurationMs:   42,
			Outcome:      OutcomeSuccess,
		})
	}

	require.NoError(t, store.WriteBatch(context.Background(), entries))
	assert.Equal(t, 150, countRows(t, st))

	// Duplicate ids are ignored
	require.NoError(t, store.WriteBatch(context.Background(), entries[:3]))
	assert.Equal(t, 150, countRows(t, st))
}

func TestSQLiteStore_StoresFallbackFlag(t *testing.T) {
	st := newSQLiteStorage(t)
	store, err := NewSQLiteStore(st.SQLiteDB(), 0)
	require.NoError(t, err)

	require.NoError(t, store.WriteBatch(context.Background(), []*Entry{
		{ID: "f1", Timestamp: time.Now(), Resource: "lesson", Outcome: OutcomeFallback, Fallback: true},
	}))

	var outcome string
	var fallback int
	require.NoError(t, st.SQLiteDB().QueryRow(
		"SELECT outcome, fallback FROM "+tableName+" WHERE id = ?", "f1").Scan(&outcome, &fallback))
	assert.Equal(t, OutcomeFallback, outcome)
	assert.Equal(t, 1, fallback)
}

func TestSQLiteStore_Cleanup(t *testing.T) {
	st := newSQLiteStorage(t)
	store, err := NewSQLiteStore(st.SQLiteDB(), 0)
	require.NoError(t, err)

	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, store.WriteBatch(context.Background(), []*Entry{
		{ID: "old", Timestamp: old, Outcome: OutcomeSuccess},
		{ID: "new", Timestamp: time.Now(), Outcome: OutcomeSuccess},
	}))

	store.retentionDays = 30
	store.cleanup()
	assert.Equal(t, 1, countRows(t, st))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestNew_Disabled(t *testing.T) {
	res, err := New(context.Background(), Config{Enabled: false}, storage.Config{Type: "bogus"})
	require.NoError(t, err)
	assert.IsType(t, &NoopLogger{}, res.Logger)
	assert.Nil(t, res.Storage)
	assert.NoError(t, res.Close())
}

func TestNew_SQLiteEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	res, err := New(context.Background(),
		Config{Enabled: true, BufferSize: 10, FlushInterval: time.Hour},
		storage.Config{Type: storage.TypeSQLite, SQLite: storage.SQLiteConfig{Path: path}})
	require.NoError(t, err)

	rec := NewRecorder(res.Logger)
	rec.RecordFallback(taggedContext(), fakeCollaborator{}, "text")

	require.NoError(t, res.Logger.Close())

	var n int
	require.NoError(t, res.Storage.SQLiteDB().QueryRow("SELECT COUNT(*) FROM "+tableName).Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, res.Close())
}

func TestNew_UnknownStorage(t *testing.T) {
	_, err := New(context.Background(), Config{Enabled: true}, storage.Config{Type: "bogus"})
	assert.Error(t, err)
}
