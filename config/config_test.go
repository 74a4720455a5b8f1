package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml or
// .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	result, err := Load()
	require.NoError(t, err)
	assert.Empty(t, result.File)

	cfg := result.Config
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "16M", cfg.Server.BodySizeLimit)
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, "rolling", cfg.Cache.Hash)
	assert.Equal(t, "openai", cfg.Providers.Text.Type)
	assert.Equal(t, "google", cfg.Providers.Speech.Type)
	assert.Equal(t, 3000, cfg.Narration.MaxChars)
	assert.Equal(t, 150, cfg.Narration.WordsPerMinute)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	t.Setenv("PORT", "9090")

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", result.Config.Server.Port)
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)

	content := `
server:
  port: "${TEST_PORT_DEFAULTS:-9999}"
  environment: production
cache:
  ttl:
    audio: ${TEST_AUDIO_TTL:-120}
providers:
  text:
    type: anthropic
    api_key: "${TEST_KEY_DEFAULTS:-default-key}"
    model: claude-3-5-haiku-latest
narration:
  voices:
    hi: hi-IN-Wavenet-A
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	t.Run("UseDefaultValue", func(t *testing.T) {
		result, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "config.yaml", result.File)

		cfg := result.Config
		assert.Equal(t, "9999", cfg.Server.Port)
		assert.True(t, cfg.Server.IsProduction())
		assert.Equal(t, 120, cfg.Cache.TTL.Audio)
		assert.Equal(t, 3600, cfg.Cache.TTL.Doubt, "unset keys keep their defaults")
		assert.Equal(t, "anthropic", cfg.Providers.Text.Type)
		assert.Equal(t, "default-key", cfg.Providers.Text.APIKey)
		assert.Equal(t, "hi-IN-Wavenet-A", cfg.Narration.Voices["hi"])
	})

	t.Run("OverrideDefaultValue", func(t *testing.T) {
		t.Setenv("TEST_PORT_DEFAULTS", "1111")
		t.Setenv("TEST_KEY_DEFAULTS", "real-key")
		t.Setenv("TEST_AUDIO_TTL", "30")

		result, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "1111", result.Config.Server.Port)
		assert.Equal(t, "real-key", result.Config.Providers.Text.APIKey)
		assert.Equal(t, 30, result.Config.Cache.TTL.Audio)
	})

	t.Run("EnvironmentBeatsYAML", func(t *testing.T) {
		t.Setenv("PORT", "2222")

		result, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "2222", result.Config.Server.Port)
	})
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	require.NoError(t, os.Unsetenv("PORT"))
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	envContent := "PORT=7070\nOPENAI_API_KEY=sk-from-dotenv-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(envContent), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("PORT")
		_ = os.Unsetenv("OPENAI_API_KEY")
	})

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", result.Config.Server.Port)
	assert.Equal(t, "sk-from-dotenv-file", result.Config.Providers.Text.APIKey)
	assert.Equal(t, "sk-from-dotenv-file", result.Config.Providers.Image.APIKey)
}

func TestLoad_EnvOverridesDotEnv(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	t.Setenv("PORT", "6060")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0o644))

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", result.Config.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}

func TestLoad_InvalidBodySizeLimit(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)
	t.Setenv("BODY_SIZE_LIMIT", "1G")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateBodySizeLimit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		// Valid formats
		{"empty string is valid", "", false},
		{"plain number", "1048576", false},
		{"kilobytes lowercase", "100k", false},
		{"kilobytes uppercase", "100K", false},
		{"kilobytes with B suffix", "100KB", false},
		{"megabytes lowercase", "10m", false},
		{"megabytes uppercase", "10M", false},
		{"megabytes with B suffix", "10MB", false},
		{"whitespace trimmed", "  10M  ", false},

		// Boundary values
		{"minimum valid (1KB)", "1K", false},
		{"maximum valid (100MB)", "100M", false},

		// Invalid formats
		{"invalid format with letters", "abc", true},
		{"invalid unit", "10X", true},
		{"negative number", "-10M", true},
		{"decimal number", "10.5M", true},
		{"empty unit with B", "10B", true},

		// Boundary violations
		{"below minimum (100 bytes)", "100", true},
		{"above maximum (200MB)", "200M", true},
		{"above maximum (1GB)", "1G", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBodySizeLimit(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for input %q, got nil", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for input %q: %v", tt.input, err)
				}
			}
		})
	}
}
