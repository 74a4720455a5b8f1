// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"edugate/internal/providers"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Providers ProvidersConfig `yaml:"providers"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Storage   StorageConfig   `yaml:"storage"`
	Usage     UsageConfig     `yaml:"usage"`
	Narration NarrationConfig `yaml:"narration"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`

	// MasterKey protects /api/*; empty disables authentication
	MasterKey string `yaml:"master_key"`

	// BodySizeLimit caps request bodies, e.g. "10M" (default "16M")
	BodySizeLimit string `yaml:"body_size_limit"`

	// Environment is "development" or "production"; production hides error details
	Environment string `yaml:"environment"`
}

// IsProduction reports whether error details must be hidden from clients.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// CacheConfig holds the resource cache configuration
type CacheConfig struct {
	// Type is "memory" (default) or "redis"
	Type string `yaml:"type"`

	// Hash is the key hasher: "rolling" (default) or "xxhash"
	Hash string `yaml:"hash"`

	Redis RedisConfig `yaml:"redis"`
	TTL   TTLConfig   `yaml:"ttl"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

// TTLConfig holds per-resource cache lifetimes in seconds
type TTLConfig struct {
	Lesson      int `yaml:"lesson"`
	LessonAudio int `yaml:"lesson_audio"`
	Doubt       int `yaml:"doubt"`
	DoubtAudio  int `yaml:"doubt_audio"`
	Audio       int `yaml:"audio"`
	Diagram     int `yaml:"diagram"`
}

// ProvidersConfig holds one upstream collaborator per role
type ProvidersConfig struct {
	Text        ProviderConfig `yaml:"text"`
	Speech      ProviderConfig `yaml:"speech"`
	Recognition ProviderConfig `yaml:"recognition"`
	Image       ProviderConfig `yaml:"image"`
}

// ProviderConfig holds the configuration of one collaborator
type ProviderConfig struct {
	Type      string `yaml:"type"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	Voice     string `yaml:"voice"`
	Size      string `yaml:"size"`
	Encoding  string `yaml:"encoding"`
	MaxTokens int    `yaml:"max_tokens"`
}

// HTTPConfig holds upstream HTTP client settings
type HTTPConfig struct {
	// Timeout is the overall request timeout in seconds
	Timeout int `yaml:"timeout"`
	// ResponseHeaderTimeout is the time to wait for response headers in seconds
	ResponseHeaderTimeout int `yaml:"response_header_timeout"`
	// MaxRetries is the number of retries on 5xx responses
	MaxRetries int `yaml:"max_retries"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// StorageConfig holds the ledger database settings
type StorageConfig struct {
	Type       string           `yaml:"type"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
}

// SQLiteConfig holds SQLite settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgreSQLConfig holds PostgreSQL settings
type PostgreSQLConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

// MongoDBConfig holds MongoDB settings
type MongoDBConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// UsageConfig holds the upstream-call ledger settings
type UsageConfig struct {
	Enabled bool `yaml:"enabled"`
	// BufferSize is the number of entries queued before new ones are dropped
	BufferSize int `yaml:"buffer_size"`
	// FlushInterval is the flush period in seconds
	FlushInterval int `yaml:"flush_interval"`
	// RetentionDays is how long entries are kept (0 = forever)
	RetentionDays int `yaml:"retention_days"`
}

// NarrationConfig holds speech and lesson tuning
type NarrationConfig struct {
	MaxChars          int `yaml:"max_chars"`
	WordsPerMinute    int `yaml:"words_per_minute"`
	MaxLessonAttempts int `yaml:"max_lesson_attempts"`
	// Voices overrides the default voice per language code, e.g. hi: hi-IN-Wavenet-A
	Voices map[string]string `yaml:"voices"`
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Config *Config
	// File is the YAML file that was read, empty when none was found
	File string
}

// Files searched for YAML configuration, in order.
var configPaths = []string{"config/config.yaml", "config.yaml"}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and the environment, in increasing precedence.
func Load() (*LoadResult, error) {
	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := buildDefaultConfig()

	file, err := applyYAML(cfg, configPaths)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	resolveProviders(cfg)

	if err := ValidateBodySizeLimit(cfg.Server.BodySizeLimit); err != nil {
		return nil, err
	}

	return &LoadResult{Config: cfg, File: file}, nil
}

func buildDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			BodySizeLimit: "16M",
			Environment:   "development",
		},
		Cache: CacheConfig{
			Type:  "memory",
			Hash:  "rolling",
			Redis: RedisConfig{Prefix: "edugate"},
			TTL: TTLConfig{
				Lesson:      7 * 24 * 3600,
				LessonAudio: 3600,
				Doubt:       3600,
				DoubtAudio:  3600,
				Audio:       24 * 3600,
				Diagram:     7 * 24 * 3600,
			},
		},
		Providers: ProvidersConfig{
			Text:        ProviderConfig{},
			Speech:      ProviderConfig{Type: "google"},
			Recognition: ProviderConfig{Type: "google"},
			Image:       ProviderConfig{Type: "openai"},
		},
		HTTP: HTTPConfig{
			Timeout:               120,
			ResponseHeaderTimeout: 90,
			MaxRetries:            2,
		},
		Metrics: MetricsConfig{Endpoint: "/metrics"},
		Storage: StorageConfig{
			Type:       "sqlite",
			SQLite:     SQLiteConfig{Path: "data/edugate.db"},
			PostgreSQL: PostgreSQLConfig{MaxConns: 10},
			MongoDB:    MongoDBConfig{Database: "edugate"},
		},
		Usage: UsageConfig{
			BufferSize:    1000,
			FlushInterval: 5,
			RetentionDays: 30,
		},
		Narration: NarrationConfig{
			MaxChars:          3000,
			WordsPerMinute:    150,
			MaxLessonAttempts: 2,
		},
	}
}

// applyYAML decodes the first existing file in paths over cfg, expanding
// ${VAR} placeholders in every scalar first.
func applyYAML(cfg *Config, paths []string) (string, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}

		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if root.Kind == 0 {
			return path, nil
		}
		expandNode(&root)
		if err := root.Decode(cfg); err != nil {
			return "", fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

func expandNode(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && strings.Contains(n.Value, "${") {
		n.Value = expandString(n.Value)
		// Let the expanded text resolve to its natural type (int, bool, ...).
		n.Tag = ""
		n.Style = 0
		return
	}
	for _, c := range n.Content {
		expandNode(c)
	}
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default}. A variable that is unset
// or empty takes the default; without a default the placeholder is kept.
func expandString(s string) string {
	if s == "" {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		parts := placeholder.FindStringSubmatch(m)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		if parts[2] != "" {
			return parts[3]
		}
		return m
	})
}

func applyEnvOverrides(cfg *Config) error {
	var errs []error
	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(dst *int, key string) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid integer %q", key, v))
			return
		}
		*dst = n
	}
	flag := func(dst *bool, key string) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
			return
		}
		*dst = b
	}
	provider := func(p *ProviderConfig, prefix string) {
		str(&p.Type, prefix+"_PROVIDER")
		str(&p.APIKey, prefix+"_API_KEY")
		str(&p.BaseURL, prefix+"_BASE_URL")
		str(&p.Model, prefix+"_MODEL")
	}

	str(&cfg.Server.Port, "PORT")
	str(&cfg.Server.MasterKey, "EDUGATE_MASTER_KEY")
	str(&cfg.Server.BodySizeLimit, "BODY_SIZE_LIMIT")
	str(&cfg.Server.Environment, "ENVIRONMENT")

	str(&cfg.Cache.Type, "CACHE_TYPE")
	str(&cfg.Cache.Hash, "CACHE_HASH")
	str(&cfg.Cache.Redis.URL, "REDIS_URL")
	str(&cfg.Cache.Redis.Prefix, "REDIS_PREFIX")
	num(&cfg.Cache.TTL.Lesson, "CACHE_TTL_LESSON")
	num(&cfg.Cache.TTL.LessonAudio, "CACHE_TTL_LESSON_AUDIO")
	num(&cfg.Cache.TTL.Doubt, "CACHE_TTL_DOUBT")
	num(&cfg.Cache.TTL.DoubtAudio, "CACHE_TTL_DOUBT_AUDIO")
	num(&cfg.Cache.TTL.Audio, "CACHE_TTL_AUDIO")
	num(&cfg.Cache.TTL.Diagram, "CACHE_TTL_DIAGRAM")

	provider(&cfg.Providers.Text, "TEXT")
	provider(&cfg.Providers.Speech, "SPEECH")
	provider(&cfg.Providers.Recognition, "RECOGNITION")
	provider(&cfg.Providers.Image, "IMAGE")

	num(&cfg.HTTP.Timeout, "HTTP_TIMEOUT")
	num(&cfg.HTTP.ResponseHeaderTimeout, "HTTP_RESPONSE_HEADER_TIMEOUT")
	num(&cfg.HTTP.MaxRetries, "HTTP_MAX_RETRIES")

	flag(&cfg.Metrics.Enabled, "METRICS_ENABLED")
	str(&cfg.Metrics.Endpoint, "METRICS_ENDPOINT")

	str(&cfg.Storage.Type, "STORAGE_TYPE")
	str(&cfg.Storage.SQLite.Path, "SQLITE_PATH")
	str(&cfg.Storage.PostgreSQL.URL, "POSTGRES_URL")
	num(&cfg.Storage.PostgreSQL.MaxConns, "POSTGRES_MAX_CONNS")
	str(&cfg.Storage.MongoDB.URL, "MONGODB_URL")
	str(&cfg.Storage.MongoDB.Database, "MONGODB_DATABASE")

	flag(&cfg.Usage.Enabled, "USAGE_ENABLED")
	num(&cfg.Usage.BufferSize, "USAGE_BUFFER_SIZE")
	num(&cfg.Usage.FlushInterval, "USAGE_FLUSH_INTERVAL")
	num(&cfg.Usage.RetentionDays, "USAGE_RETENTION_DAYS")

	num(&cfg.Narration.MaxChars, "NARRATION_MAX_CHARS")
	num(&cfg.Narration.WordsPerMinute, "NARRATION_WORDS_PER_MINUTE")
	num(&cfg.Narration.MaxLessonAttempts, "LESSON_MAX_ATTEMPTS")

	return errors.Join(errs...)
}

// vendorKeyEnv maps a provider type to the vendor-wide API key variable used
// when a role has no key of its own.
var vendorKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"google":    "GOOGLE_API_KEY",
	"stability": "STABILITY_API_KEY",
}

// resolveProviders infers the text variant from the model id when no type
// is set, then fills missing API keys from the vendor-wide variables.
func resolveProviders(cfg *Config) {
	if cfg.Providers.Text.Type == "" {
		cfg.Providers.Text.Type = providers.InferTextType(cfg.Providers.Text.Model)
	}
	for _, p := range []*ProviderConfig{
		&cfg.Providers.Text, &cfg.Providers.Speech, &cfg.Providers.Recognition, &cfg.Providers.Image,
	} {
		if p.APIKey != "" {
			continue
		}
		if env, ok := vendorKeyEnv[p.Type]; ok {
			p.APIKey = os.Getenv(env)
		}
	}
}

// Seconds converts a configured number of seconds to a duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

const (
	minBodySizeLimit = 1 << 10
	maxBodySizeLimit = 100 << 20
)

var bodySizePattern = regexp.MustCompile(`^(\d+)(?:([KMGkmg])[Bb]?)?$`)

// ValidateBodySizeLimit checks a size string such as "10M" or "512K" and
// requires it to fall between 1KB and 100MB. Empty means the default.
func ValidateBodySizeLimit(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	m := bodySizePattern.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("invalid body size limit %q: expected a number with an optional K, M or G unit", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid body size limit %q: %w", s, err)
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		n <<= 10
	case "M":
		n <<= 20
	case "G":
		n <<= 30
	}
	if n < minBodySizeLimit || n > maxBodySizeLimit {
		return fmt.Errorf("body size limit %q out of range (1K to 100M)", s)
	}
	return nil
}
