package openai

import (
	"context"
	"net/http"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

// Speech synthesizes narration through /audio/speech. The endpoint takes
// plain text, so pause markup is not sent.
type Speech struct {
	*base
	voice string
}

// NewSpeech creates the OpenAI speech collaborator.
func NewSpeech(cfg providers.Config, opts providers.Options) *Speech {
	s := &Speech{base: newBase(providers.KindSpeech, cfg, opts, defaultSpeechModel), voice: cfg.Voice}
	if s.voice == "" {
		s.voice = defaultSpeechVoice
	}
	return s
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// ResolveVoice returns the configured OpenAI voice; catalog voice ids do not
// apply to this endpoint.
func (s *Speech) ResolveVoice(core.SpeechRequest) string {
	return s.voice
}

// Synthesize returns MP3 audio for req.Text.
func (s *Speech) Synthesize(ctx context.Context, req core.SpeechRequest) ([]byte, error) {
	resp, err := s.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/audio/speech",
		Body: speechRequest{
			Model:          s.model,
			Input:          req.Text,
			Voice:          s.ResolveVoice(req),
			ResponseFormat: "mp3",
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, core.NewUpstreamFormatError(providerName, "upstream returned empty audio", nil)
	}
	return resp.Body, nil
}
