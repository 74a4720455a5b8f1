//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"edugate/internal/core"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(ctx)
	})

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)
	return endpoint
}

func TestRedisStore_Integration(t *testing.T) {
	ctx := context.Background()
	url := startRedis(t)

	backend, err := NewBackend(ctx, BackendConfig{Type: TypeRedis, Redis: RedisConfig{URL: url, Prefix: "edugate-test"}})
	require.NoError(t, err)
	defer backend.Close()

	lessons := Open[core.LessonRecord](backend, core.ResourceLesson, time.Hour)
	diagrams := Open[core.DiagramRecord](backend, core.ResourceDiagram, time.Hour)

	record := core.LessonRecord{Title: "Understanding Photosynthesis", Introduction: "intro", Grade: 5, Language: "en"}
	require.NoError(t, lessons.Set(ctx, "lesson:photosynthesis:5:en", record))
	require.NoError(t, diagrams.Set(ctx, "diagram:photosynthesis:5:en", core.DiagramRecord{Image: "aGk=", Style: "scientific-diagram"}))

	got, ok, err := lessons.Get(ctx, "lesson:photosynthesis:5:en")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record.Title, got.Title)
	assert.Equal(t, 5, got.Grade)

	n, err := lessons.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Flushing one resource leaves the others untouched.
	flushed, err := lessons.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)

	_, ok, err = diagrams.Get(ctx, "diagram:photosynthesis:5:en")
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := diagrams.Delete(ctx, "diagram:photosynthesis:5:en")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = diagrams.Delete(ctx, "diagram:photosynthesis:5:en")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRedisStore_ExpiresEntries(t *testing.T) {
	ctx := context.Background()
	url := startRedis(t)

	client, err := NewRedisClient(ctx, RedisConfig{URL: url})
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore[string](client, "edugate-test:audio", time.Hour)
	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Second))

	require.Eventually(t, func() bool {
		_, ok, err := store.Get(ctx, "k")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}
