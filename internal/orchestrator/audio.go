package orchestrator

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"edugate/internal/cache"
	"edugate/internal/core"
	"edugate/internal/ssml"
	"edugate/internal/voice"
)

// AudioResponse is a standalone narration clip.
type AudioResponse struct {
	*core.AudioRecord
	Cached bool       `json:"cached"`
	Stats  core.Stats `json:"stats"`
}

// Audio narrates arbitrary text. Throttling is surfaced, not retried.
func (s *Service) Audio(ctx context.Context, req AudioRequest) (*AudioResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, cached, err := s.narrate(ctx, core.ResourceAudio, req.Text, req.Language, req.VoiceID)
	if err != nil {
		return nil, err
	}
	return &AudioResponse{
		AudioRecord: record,
		Cached:      cached,
		Stats:       s.Stats(core.ResourceAudio),
	}, nil
}

func (s *Service) audioStore(resource core.Resource) cache.Store[*core.AudioRecord] {
	switch resource {
	case core.ResourceLessonAudio:
		return s.lessonAudio
	case core.ResourceDoubtAudio:
		return s.doubtAudio
	default:
		return s.audio
	}
}

// narrate picks a voice, truncates text to the narration budget and returns
// the cached or freshly synthesized clip for resource.
func (s *Service) narrate(ctx context.Context, resource core.Resource, text, language, voiceID string) (*core.AudioRecord, bool, error) {
	sel := s.voices.Select(language, voiceID)
	speechReq := core.SpeechRequest{VoiceID: sel.ID, LanguageCode: sel.LanguageCode}
	if r, ok := s.collab.Speech.(core.VoiceResolver); ok {
		speechReq.VoiceID = r.ResolveVoice(speechReq)
	}
	key := s.keyer.Text(resource, text, speechReq.VoiceID, sel.LanguageCode)

	record, cached, err := lookupOrFetch(ctx, s, resource, s.audioStore(resource), key, func(ctx context.Context) (*core.AudioRecord, error) {
		narration, truncated := voice.Truncate(text, s.cfg.MaxNarrationChars)
		plain := ssml.StripDirectives(narration)

		speechReq.Text = plain
		speechReq.Markup = ssml.Build(narration)
		audio, err := s.collab.Speech.Synthesize(ctx, speechReq)
		if err != nil {
			return nil, err
		}
		if len(audio) == 0 {
			return nil, core.NewUpstreamFormatError(providerName(s.collab.Speech), "speech synthesis returned no audio", nil)
		}

		s.counters[resource].apiCalls.Add(1)
		return &core.AudioRecord{
			Audio:           base64.StdEncoding.EncodeToString(audio),
			VoiceID:         speechReq.VoiceID,
			LanguageCode:    sel.LanguageCode,
			UsingFallback:   sel.UsingFallback,
			FallbackMessage: sel.FallbackMessage,
			DurationSeconds: voice.EstimateDuration(plain, s.cfg.WordsPerMinute),
			Truncated:       truncated,
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	// The note belongs to this request, not to the cached clip.
	if sel.VoiceNote != "" {
		noted := *record
		noted.VoiceNote = sel.VoiceNote
		record = &noted
	}
	return record, cached, nil
}

// audioFailed records a narration failure absorbed by parent and returns the
// message shown to the caller.
func (s *Service) audioFailed(ctx context.Context, parent core.Resource, err error) string {
	slog.Warn("narration failed, continuing without audio",
		"request_id", core.GetRequestID(ctx),
		"resource", parent,
		"error", err,
	)
	s.counters[parent].audioFailures.Add(1)
	if s.hooks.OnAudioFailure != nil {
		s.hooks.OnAudioFailure(ctx, parent, err)
	}

	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Type == core.ErrorTypeRateLimit {
			return "Narration is busy right now; please try again shortly."
		}
		return "Narration is unavailable: " + gwErr.Message
	}
	return "Narration is unavailable right now."
}

func providerName(v any) string {
	if c, ok := v.(core.Collaborator); ok {
		return c.Name()
	}
	return ""
}
