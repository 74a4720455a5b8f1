package orchestrator

import (
	"context"
	"strings"

	"edugate/internal/core"
	"edugate/internal/voice"
)

// TranscribeResponse is recognized speech. Transcriptions are never cached.
type TranscribeResponse struct {
	Text   string     `json:"text"`
	Cached bool       `json:"cached"`
	Stats  core.Stats `json:"stats"`
}

// Transcribe converts recorded audio to text.
func (s *Service) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error) {
	audio, err := req.Validate(s.cfg.MaxAudioBytes)
	if err != nil {
		return nil, err
	}

	ctx = core.WithResource(ctx, core.ResourceTranscribe, "")
	text, err := s.collab.Recognition.Transcribe(ctx, audio, voice.Locale(req.Language))
	if err != nil {
		return nil, err
	}
	s.counters[core.ResourceTranscribe].apiCalls.Add(1)

	return &TranscribeResponse{
		Text:  strings.TrimSpace(text),
		Stats: s.Stats(core.ResourceTranscribe),
	}, nil
}
