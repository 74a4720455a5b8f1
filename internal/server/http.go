package server

import (
	"context"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"edugate/internal/core"
)

// DefaultBodySizeLimit bounds request bodies when none is configured.
// Transcription uploads carry base64 audio, so it is larger than JSON alone needs.
const DefaultBodySizeLimit = "16M"

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	MasterKey       string // Optional: Master key for authentication
	MetricsEnabled  bool   // Whether to expose Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for metrics endpoint (default: /metrics)
	BodySizeLimit   string // Max request body size, e.g. "16M"
	ExposeDetails   bool   // Include underlying error text in error bodies
}

// New creates a new HTTP server
func New(gateway Gateway, cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := NewHandler(gateway, cfg.ExposeDetails)

	// Build list of paths that skip authentication
	authSkipPaths := []string{"/health"}

	// Determine metrics path
	metricsPath := "/metrics"
	if cfg.MetricsEnabled {
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean("/" + cfg.MetricsEndpoint)
		}
		authSkipPaths = append(authSkipPaths, metricsPath)
	}

	// Global middleware stack (order matters)
	e.Use(RequestIDMiddleware())
	e.Use(requestLogger())
	e.Use(middleware.Recover())

	bodySizeLimit := DefaultBodySizeLimit
	if cfg.BodySizeLimit != "" {
		bodySizeLimit = cfg.BodySizeLimit
	}
	e.Use(middleware.BodyLimit(bodySizeLimit))

	// Authentication (skips public paths)
	if cfg.MasterKey != "" {
		e.Use(AuthMiddleware(cfg.MasterKey, authSkipPaths))
	}

	// Public routes
	e.GET("/health", handler.Health)
	if cfg.MetricsEnabled {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	// API routes
	api := e.Group("/api")

	api.POST("/lesson", handler.Lesson)
	api.GET("/lesson/stats", handler.Stats(core.ResourceLesson))
	api.DELETE("/lesson/cache", handler.FlushCache(core.ResourceLesson))

	api.POST("/doubt", handler.Doubt)
	api.GET("/doubt/stats", handler.Stats(core.ResourceDoubt))
	api.DELETE("/doubt/cache", handler.FlushCache(core.ResourceDoubt))

	api.POST("/audio", handler.Audio)
	api.GET("/audio/stats", handler.Stats(core.ResourceAudio))
	api.DELETE("/audio/cache", handler.FlushCache(core.ResourceAudio))

	api.POST("/diagram", handler.Diagram)
	api.GET("/diagram/stats", handler.Stats(core.ResourceDiagram))
	api.DELETE("/diagram/cache", handler.DiagramCache)

	api.POST("/transcribe", handler.Transcribe)
	api.GET("/transcribe/stats", handler.Stats(core.ResourceTranscribe))

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
