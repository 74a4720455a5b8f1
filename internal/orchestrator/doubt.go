package orchestrator

import (
	"context"
	"strconv"
	"strings"

	"edugate/internal/cache"
	"edugate/internal/core"
)

// DoubtResponse is an answer with its narration.
type DoubtResponse struct {
	Answer      string            `json:"answer"`
	Audio       *core.AudioRecord `json:"audio"`
	AudioError  string            `json:"audioError,omitempty"`
	Cached      bool              `json:"cached"`
	AudioCached bool              `json:"audioCached"`
	Stats       core.Stats        `json:"stats"`
}

// DoubtKey derives the answer cache key. The normalized topic is folded into
// the hashed text so the same question about different topics never shares an answer.
func (s *Service) DoubtKey(req DoubtRequest) string {
	text := cache.Normalize(req.Topic) + "|" + req.Question
	return s.keyer.Text(core.ResourceDoubt, text, strconv.Itoa(req.Grade), req.Language)
}

// Doubt answers a follow-up question. Like lessons, a cached answer still
// goes through its own narration lookup, and narration failures never fail
// the answer.
func (s *Service) Doubt(ctx context.Context, req DoubtRequest) (*DoubtResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record, cached, err := lookupOrFetch(ctx, s, core.ResourceDoubt, s.doubts, s.DoubtKey(req), func(ctx context.Context) (*core.DoubtAnswerRecord, error) {
		prompt := doubtPrompt(strings.TrimSpace(req.Question), strings.TrimSpace(req.Topic), req.Grade, req.Language)
		answer, err := s.collab.Text.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil, core.NewUpstreamFormatError(providerName(s.collab.Text), "text generation returned an empty answer", nil)
		}
		s.counters[core.ResourceDoubt].apiCalls.Add(1)
		return &core.DoubtAnswerRecord{Answer: answer}, nil
	})
	if err != nil {
		return nil, err
	}

	resp := &DoubtResponse{Answer: record.Answer, Cached: cached}

	audio, audioCached, err := s.narrate(ctx, core.ResourceDoubtAudio, record.Answer, req.Language, "")
	if err != nil {
		resp.AudioError = s.audioFailed(ctx, core.ResourceDoubt, err)
	} else {
		resp.Audio = audio
		resp.AudioCached = audioCached
	}

	resp.Stats = s.Stats(core.ResourceDoubt)
	return resp, nil
}
