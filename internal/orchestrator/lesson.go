package orchestrator

import (
	"context"
	"log/slog"

	"edugate/internal/core"
)

// LessonResponse is a lesson with its narration.
type LessonResponse struct {
	Lesson      *core.LessonRecord `json:"lesson"`
	Audio       *core.AudioRecord  `json:"audio"`
	AudioError  string             `json:"audioError,omitempty"`
	Cached      bool               `json:"cached"`
	AudioCached bool               `json:"audioCached"`
	Stats       core.Stats         `json:"stats"`
}

// Lesson returns the lesson for req, generating it on a cache miss. The
// narration is looked up separately, so a cached lesson can still trigger
// speech synthesis. Narration failures never fail the lesson.
func (s *Service) Lesson(ctx context.Context, req LessonRequest) (*LessonResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := s.keyer.Structured(core.ResourceLesson, req.Topic, req.Grade, req.Language)
	lesson, cached, err := lookupOrFetch(ctx, s, core.ResourceLesson, s.lessons, key, func(ctx context.Context) (*core.LessonRecord, error) {
		return s.generateLesson(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	resp := &LessonResponse{Lesson: lesson, Cached: cached}

	audio, audioCached, err := s.narrate(ctx, core.ResourceLessonAudio, NarrationText(lesson), req.Language, "")
	if err != nil {
		resp.AudioError = s.audioFailed(ctx, core.ResourceLesson, err)
	} else {
		resp.Audio = audio
		resp.AudioCached = audioCached
	}

	resp.Stats = s.Stats(core.ResourceLesson)
	return resp, nil
}

func (s *Service) generateLesson(ctx context.Context, req LessonRequest) (*core.LessonRecord, error) {
	gen := newGeneration(s.cfg.MaxLessonAttempts)
	usable := func(text string) bool { return IsUsableLesson(text, s.cfg.MinLessonChars) }

	if err := gen.run(ctx, s.collab.Text, lessonPrompt(req.Topic, req.Grade, req.Language), usable); err != nil {
		return nil, err
	}

	if gen.state == StateFallbackUsed {
		slog.Warn("lesson generation exhausted, using fallback content",
			"request_id", core.GetRequestID(ctx),
			"topic", req.Topic,
			"attempts", gen.attempt,
		)
		s.counters[core.ResourceLesson].fallbacks.Add(1)
		if s.hooks.OnFallback != nil {
			s.hooks.OnFallback(ctx, core.ResourceLesson)
		}
		return FallbackLesson(req.Topic, req.Grade, req.Language), nil
	}

	s.counters[core.ResourceLesson].apiCalls.Add(1)
	return ParseLesson(gen.text, req.Topic, req.Grade, req.Language, s.cfg.MinParagraphChars), nil
}
