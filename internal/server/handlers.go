// Package server provides HTTP handlers and server setup for the lesson gateway.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"edugate/internal/core"
	"edugate/internal/orchestrator"
)

// Gateway is the orchestration surface the handlers serve.
// *orchestrator.Service implements it.
type Gateway interface {
	Lesson(ctx context.Context, req orchestrator.LessonRequest) (*orchestrator.LessonResponse, error)
	Doubt(ctx context.Context, req orchestrator.DoubtRequest) (*orchestrator.DoubtResponse, error)
	Audio(ctx context.Context, req orchestrator.AudioRequest) (*orchestrator.AudioResponse, error)
	Diagram(ctx context.Context, req orchestrator.DiagramRequest) (*orchestrator.DiagramResponse, error)
	Transcribe(ctx context.Context, req orchestrator.TranscribeRequest) (*orchestrator.TranscribeResponse, error)

	Report(ctx context.Context, resource core.Resource) (*orchestrator.CacheReport, error)
	FlushCache(ctx context.Context, resource core.Resource) (map[core.Resource]int, error)
	EvictDiagramKey(ctx context.Context, key string) (bool, error)
	EvictDiagram(ctx context.Context, topic string, grade int, language string) (int, error)
}

// Handler holds the HTTP handlers
type Handler struct {
	gateway Gateway
	// exposeDetails adds the underlying error text to error responses
	exposeDetails bool
}

// NewHandler creates a new handler serving gateway
func NewHandler(gateway Gateway, exposeDetails bool) *Handler {
	return &Handler{
		gateway:       gateway,
		exposeDetails: exposeDetails,
	}
}

// Lesson handles POST /api/lesson
func (h *Handler) Lesson(c echo.Context) error {
	var req orchestrator.LessonRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	resp, err := h.gateway.Lesson(c.Request().Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Doubt handles POST /api/doubt
func (h *Handler) Doubt(c echo.Context) error {
	var req orchestrator.DoubtRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	resp, err := h.gateway.Doubt(c.Request().Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Audio handles POST /api/audio
func (h *Handler) Audio(c echo.Context) error {
	var req orchestrator.AudioRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	resp, err := h.gateway.Audio(c.Request().Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Diagram handles POST /api/diagram
func (h *Handler) Diagram(c echo.Context) error {
	var req orchestrator.DiagramRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	resp, err := h.gateway.Diagram(c.Request().Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Transcribe handles POST /api/transcribe
func (h *Handler) Transcribe(c echo.Context) error {
	var req orchestrator.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, invalidBody(err))
	}

	resp, err := h.gateway.Transcribe(c.Request().Context(), req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Stats returns the GET /api/<resource>/stats handler
func (h *Handler) Stats(resource core.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, err := h.gateway.Report(c.Request().Context(), resource)
		if err != nil {
			return h.handleError(c, err)
		}
		return c.JSON(http.StatusOK, report)
	}
}

// FlushCache returns the DELETE /api/<resource>/cache handler
func (h *Handler) FlushCache(resource core.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		cleared, err := h.gateway.FlushCache(c.Request().Context(), resource)
		if err != nil {
			return h.handleError(c, err)
		}
		slog.Info("cache flushed", "resource", resource, "cleared", cleared,
			"request_id", core.GetRequestID(c.Request().Context()))
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": fmt.Sprintf("%s cache cleared", resource),
			"cleared": cleared,
		})
	}
}

// DiagramCache handles DELETE /api/diagram/cache. With ?key= it evicts one
// entry, with ?topic=&grade=&language= it evicts that topic in every style,
// and without parameters it flushes the whole diagram cache.
func (h *Handler) DiagramCache(c echo.Context) error {
	ctx := c.Request().Context()

	if key := c.QueryParam("key"); key != "" {
		removed, err := h.gateway.EvictDiagramKey(ctx, key)
		if err != nil {
			return h.handleError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"key": key, "removed": removed})
	}

	if topic := c.QueryParam("topic"); topic != "" {
		grade, err := strconv.Atoi(c.QueryParam("grade"))
		if err != nil {
			return h.handleError(c, core.NewValidationError([]core.Violation{
				{Field: "grade", Message: "must be an integer"},
			}))
		}
		removed, err := h.gateway.EvictDiagram(ctx, topic, grade, c.QueryParam("language"))
		if err != nil {
			return h.handleError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"topic": topic, "removed": removed})
	}

	return h.FlushCache(core.ResourceDiagram)(c)
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func invalidBody(err error) error {
	return core.NewInvalidRequestError("invalid request body", err)
}

// handleError converts gateway errors to appropriate HTTP responses
func (h *Handler) handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON(h.exposeDetails))
	}

	slog.Error("unexpected error", "error", err, "path", c.Path(),
		"request_id", core.GetRequestID(c.Request().Context()))

	body := map[string]interface{}{
		"type":    "internal_error",
		"message": "an unexpected error occurred",
	}
	if h.exposeDetails {
		body["detail"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": body})
}
