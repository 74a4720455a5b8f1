package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"edugate/internal/core"
	"edugate/internal/relevance"
)

// DiagramResponse is an illustration, or a note that the topic needs none.
type DiagramResponse struct {
	Needed  bool       `json:"needed"`
	Image   string     `json:"image,omitempty"`
	Style   string     `json:"style,omitempty"`
	Message string     `json:"message,omitempty"`
	Cached  bool       `json:"cached"`
	Stats   core.Stats `json:"stats"`
}

// DiagramKey derives the image cache key for one topic, grade, language and style.
func (s *Service) DiagramKey(topic string, grade int, language string, style relevance.Style) string {
	return s.keyer.Structured(core.ResourceDiagram, topic, grade, language) + ":" + string(style)
}

// Diagram returns an illustration for req. Topics the relevance filter
// rejects are answered without any cache lookup or upstream call.
func (s *Service) Diagram(ctx context.Context, req DiagramRequest) (*DiagramResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !relevance.NeedsVisualDiagram(req.Topic) {
		s.counters[core.ResourceDiagram].skipped.Add(1)
		if s.hooks.OnDiagramSkipped != nil {
			s.hooks.OnDiagramSkipped(ctx)
		}
		slog.Debug("diagram skipped", "request_id", core.GetRequestID(ctx), "topic", req.Topic)
		return &DiagramResponse{
			Needed:  false,
			Message: "This topic is best explained without a diagram.",
			Stats:   s.Stats(core.ResourceDiagram),
		}, nil
	}

	style := relevance.Style(strings.ToLower(strings.TrimSpace(req.Style)))
	if style == "" {
		style = relevance.SuggestedStyle(req.Topic)
	}

	key := s.DiagramKey(req.Topic, req.Grade, req.Language, style)
	record, cached, err := lookupOrFetch(ctx, s, core.ResourceDiagram, s.diagrams, key, func(ctx context.Context) (*core.DiagramRecord, error) {
		image, err := s.collab.Image.GenerateImage(ctx, diagramPrompt(strings.TrimSpace(req.Topic), req.Grade, style))
		if err != nil {
			return nil, err
		}
		if image == "" {
			return nil, core.NewUpstreamFormatError(providerName(s.collab.Image), "image generation returned no image", nil)
		}
		s.counters[core.ResourceDiagram].apiCalls.Add(1)
		return &core.DiagramRecord{Image: image, Style: string(style)}, nil
	})
	if err != nil {
		return nil, err
	}

	return &DiagramResponse{
		Needed: true,
		Image:  record.Image,
		Style:  record.Style,
		Cached: cached,
		Stats:  s.Stats(core.ResourceDiagram),
	}, nil
}
