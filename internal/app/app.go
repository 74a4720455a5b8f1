// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the edugate server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"edugate/config"
	"edugate/internal/cache"
	"edugate/internal/core"
	"edugate/internal/httpclient"
	"edugate/internal/llmclient"
	"edugate/internal/observability"
	"edugate/internal/orchestrator"
	"edugate/internal/providers"
	"edugate/internal/server"
	"edugate/internal/storage"
	"edugate/internal/usage"
	"edugate/internal/voice"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config  *config.Config
	cache   *cache.Backend
	service *orchestrator.Service
	usage   *usage.Result
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the configuration options for creating an App.
type Config struct {
	// AppConfig holds the loaded application configuration produced by config.Load.
	AppConfig *config.LoadResult

	// Factory provides the registries used to construct collaborators.
	Factory *providers.Factory
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}

	if cfg.AppConfig.Config == nil {
		return nil, fmt.Errorf("app config contains nil Config")
	}

	if cfg.Factory == nil {
		return nil, fmt.Errorf("factory is required")
	}

	appCfg := cfg.AppConfig.Config

	app := &App{
		config: appCfg,
	}

	// Initialize the upstream-call ledger
	usageResult, err := usage.New(ctx, usageConfig(appCfg), storageConfig(appCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize usage ledger: %w", err)
	}
	app.usage = usageResult
	recorder := usage.NewRecorder(usageResult.Logger)

	// Every collaborator reports its round trips to the ledger, and to
	// Prometheus when metrics are enabled.
	observers := llmclient.Observers{recorder}
	if appCfg.Metrics.Enabled {
		observers = append(observers, observability.UpstreamObserver{})
	}

	httpCfg := httpclient.WithTimeouts(config.Seconds(appCfg.HTTP.Timeout), config.Seconds(appCfg.HTTP.ResponseHeaderTimeout))
	opts := providers.Options{
		HTTPClient: httpclient.NewHTTPClient(&httpCfg),
		Observer:   observers,
		MaxRetries: appCfg.HTTP.MaxRetries,
	}

	collaborators, err := buildCollaborators(cfg.Factory, appCfg.Providers, opts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize collaborators: %w", err), app.usage.Close())
	}

	hasher, err := cache.NewHasher(appCfg.Cache.Hash)
	if err != nil {
		return nil, errors.Join(err, app.usage.Close())
	}

	backend, err := cache.NewBackend(ctx, cache.BackendConfig{
		Type: appCfg.Cache.Type,
		Redis: cache.RedisConfig{
			URL:    appCfg.Cache.Redis.URL,
			Prefix: appCfg.Cache.Redis.Prefix,
		},
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize cache: %w", err), app.usage.Close())
	}
	app.cache = backend

	service, err := orchestrator.New(orchestrator.Deps{
		Collaborators: collaborators,
		Cache:         backend,
		Keyer:         cache.NewKeyer(hasher),
		Voices:        voice.NewCatalog(appCfg.Narration.Voices),
		Hooks:         buildHooks(appCfg.Metrics.Enabled, recorder, collaborators),
	}, orchestratorConfig(appCfg))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to initialize orchestrator: %w", err), backend.Close(), app.usage.Close())
	}
	app.service = service

	app.logStartupInfo(cfg.AppConfig.File, hasher.Name())

	app.server = server.New(service, &server.Config{
		MasterKey:       appCfg.Server.MasterKey,
		MetricsEnabled:  appCfg.Metrics.Enabled,
		MetricsEndpoint: appCfg.Metrics.Endpoint,
		BodySizeLimit:   appCfg.Server.BodySizeLimit,
		ExposeDetails:   !appCfg.Server.IsProduction(),
	})

	return app, nil
}

// Service returns the orchestration service.
func (a *App) Service() *orchestrator.Service {
	return a.service
}

// Handler returns the HTTP handler of the server.
func (a *App) Handler() http.Handler {
	return a.server
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order.
// Order:
// 1. HTTP server shutdown via server.Shutdown(ctx), honoring the passed context timeout/cancellation.
// 2. Orchestrator caches close, then the cache backend (sweepers, Redis client).
// 3. Usage ledger close (flushes pending entries, then closes storage).
//
// Shutdown is idempotent and safe for repeated calls; after the first call, subsequent calls are no-ops.
// It attempts every close step, aggregates failures, and returns a joined error if any step fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	// 1. Shutdown HTTP server first (stop accepting new requests)
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	// 2. Close resource caches
	if a.service != nil {
		if err := a.service.Close(); err != nil {
			slog.Error("cache close error", "error", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("cache backend close error", "error", err)
			errs = append(errs, fmt.Errorf("cache backend close: %w", err))
		}
	}

	// 3. Close the ledger (flushes pending entries)
	if a.usage != nil {
		if err := a.usage.Close(); err != nil {
			slog.Error("usage ledger close error", "error", err)
			errs = append(errs, fmt.Errorf("usage close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo(configFile, hash string) {
	cfg := a.config

	if configFile != "" {
		slog.Info("configuration file loaded", "path", configFile)
	}

	// Security warnings
	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: EDUGATE_MASTER_KEY not set - server running in UNSAFE MODE",
			"security_risk", "unauthenticated access allowed",
			"recommendation", "set EDUGATE_MASTER_KEY environment variable to secure this gateway")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	slog.Info("collaborators configured",
		"text", cfg.Providers.Text.Type,
		"speech", cfg.Providers.Speech.Type,
		"recognition", cfg.Providers.Recognition.Type,
		"image", cfg.Providers.Image.Type,
	)

	slog.Info("cache configured", "type", a.cache.Type(), "hash", hash)

	// Metrics configuration
	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	// Usage ledger configuration
	if cfg.Usage.Enabled {
		slog.Info("usage ledger enabled",
			"storage_type", cfg.Storage.Type,
			"buffer_size", cfg.Usage.BufferSize,
			"flush_interval", cfg.Usage.FlushInterval,
			"retention_days", cfg.Usage.RetentionDays,
		)
	} else {
		slog.Info("usage ledger disabled")
	}
}

// buildCollaborators creates one collaborator per role from the factory registries.
func buildCollaborators(f *providers.Factory, cfg config.ProvidersConfig, opts providers.Options) (orchestrator.Collaborators, error) {
	var (
		c   orchestrator.Collaborators
		err error
	)
	if c.Text, err = f.Text.Create(providerConfig(cfg.Text), opts); err != nil {
		return c, err
	}
	if c.Speech, err = f.Speech.Create(providerConfig(cfg.Speech), opts); err != nil {
		return c, err
	}
	if c.Recognition, err = f.Recognition.Create(providerConfig(cfg.Recognition), opts); err != nil {
		return c, err
	}
	if c.Image, err = f.Image.Create(providerConfig(cfg.Image), opts); err != nil {
		return c, err
	}
	return c, nil
}

// buildHooks routes orchestration events to Prometheus (when enabled) and the ledger.
func buildHooks(metrics bool, recorder *usage.Recorder, c orchestrator.Collaborators) orchestrator.Hooks {
	text, _ := c.Text.(core.Collaborator)

	hooks := orchestrator.Hooks{
		OnFallback: func(ctx context.Context, resource core.Resource) {
			if metrics {
				observability.RecordFallback(resource)
			}
			recorder.RecordFallback(ctx, text, string(providers.KindText))
		},
		OnAudioFailure: func(ctx context.Context, resource core.Resource, err error) {
			if metrics {
				observability.RecordAudioFailure(resource)
			}
		},
	}
	if metrics {
		hooks.OnCacheLookup = observability.RecordCacheLookup
		hooks.OnDiagramSkipped = func(context.Context) { observability.RecordDiagramSkip() }
	}
	return hooks
}

func providerConfig(p config.ProviderConfig) providers.Config {
	return providers.Config{
		Type:      p.Type,
		APIKey:    p.APIKey,
		BaseURL:   p.BaseURL,
		Model:     p.Model,
		Voice:     p.Voice,
		Size:      p.Size,
		Encoding:  p.Encoding,
		MaxTokens: p.MaxTokens,
	}
}

func orchestratorConfig(cfg *config.Config) orchestrator.Config {
	ttl := cfg.Cache.TTL
	return orchestrator.Config{
		TTLs: orchestrator.TTLs{
			Lesson:      config.Seconds(ttl.Lesson),
			LessonAudio: config.Seconds(ttl.LessonAudio),
			Doubt:       config.Seconds(ttl.Doubt),
			DoubtAudio:  config.Seconds(ttl.DoubtAudio),
			Audio:       config.Seconds(ttl.Audio),
			Diagram:     config.Seconds(ttl.Diagram),
		},
		MaxLessonAttempts: cfg.Narration.MaxLessonAttempts,
		MaxNarrationChars: cfg.Narration.MaxChars,
		WordsPerMinute:    cfg.Narration.WordsPerMinute,
	}
}

func usageConfig(cfg *config.Config) usage.Config {
	return usage.Config{
		Enabled:       cfg.Usage.Enabled,
		BufferSize:    cfg.Usage.BufferSize,
		FlushInterval: config.Seconds(cfg.Usage.FlushInterval),
		RetentionDays: cfg.Usage.RetentionDays,
	}
}

func storageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Type:       cfg.Storage.Type,
		SQLite:     storage.SQLiteConfig{Path: cfg.Storage.SQLite.Path},
		PostgreSQL: storage.PostgreSQLConfig{URL: cfg.Storage.PostgreSQL.URL, MaxConns: cfg.Storage.PostgreSQL.MaxConns},
		MongoDB:    storage.MongoDBConfig{URL: cfg.Storage.MongoDB.URL, Database: cfg.Storage.MongoDB.Database},
	}
}
