package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})

	logger.Info("lesson served", "resource", "lesson", "cached", true)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "lesson served", line["msg"])
	assert.Equal(t, "lesson", line["resource"])
	assert.Equal(t, true, line["cached"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Format: FormatText})

	logger.Info("cache flushed", "resource", "audio")

	out := buf.String()
	assert.Contains(t, out, "cache flushed")
	assert.Contains(t, out, "resource=audio")
	assert.NotContains(t, out, "\033[", "colors are disabled when the writer is not a terminal")
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Format: FormatJSON, Level: "warn"})

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_LEVEL", "debug")

	opts := OptionsFromEnv()
	assert.Equal(t, "text", opts.Format)
	assert.Equal(t, "debug", opts.Level)
}
