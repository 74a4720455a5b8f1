// Package openai provides the OpenAI text, speech, recognition and image collaborators.
package openai

import (
	"net/http"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1"

	defaultTextModel        = "gpt-4o-mini"
	defaultSpeechModel      = "tts-1"
	defaultSpeechVoice      = "alloy"
	defaultRecognitionModel = "whisper-1"
	defaultImageModel       = "dall-e-3"
	defaultImageSize        = "1024x1024"
	defaultMaxTokens        = 1500
)

// Registrations for each collaborator kind.
var (
	TextRegistration = providers.Registration[core.TextGenerator]{
		Type: providerName,
		New: func(cfg providers.Config, opts providers.Options) (core.TextGenerator, error) {
			return NewText(cfg, opts), nil
		},
	}
	SpeechRegistration = providers.Registration[core.SpeechSynthesizer]{
		Type: providerName,
		New: func(cfg providers.Config, opts providers.Options) (core.SpeechSynthesizer, error) {
			return NewSpeech(cfg, opts), nil
		},
	}
	RecognitionRegistration = providers.Registration[core.SpeechRecognizer]{
		Type: providerName,
		New: func(cfg providers.Config, opts providers.Options) (core.SpeechRecognizer, error) {
			return NewRecognizer(cfg, opts), nil
		},
	}
	ImageRegistration = providers.Registration[core.ImageGenerator]{
		Type: providerName,
		New: func(cfg providers.Config, opts providers.Options) (core.ImageGenerator, error) {
			return NewImage(cfg, opts), nil
		},
	}
)

// base carries the client shared by every OpenAI collaborator.
type base struct {
	client *llmclient.Client
	apiKey string
	model  string
}

func newBase(kind providers.Kind, cfg providers.Config, opts providers.Options, defaultModel string) *base {
	b := &base{apiKey: cfg.APIKey, model: cfg.Model}
	if b.model == "" {
		b.model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	b.client = opts.NewClient(opts.ClientConfig(kind, providerName, baseURL, b.model), b.setHeaders)
	return b
}

// Name returns "openai".
func (b *base) Name() string { return providerName }

// Model returns the configured model id.
func (b *base) Model() string { return b.model }

// setHeaders sets the required headers for OpenAI API requests
func (b *base) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	// OpenAI requires ASCII-only client request ids of at most 512 bytes, otherwise returns 400.
	if requestID := core.GetRequestID(req.Context()); requestID != "" && isValidClientRequestID(requestID) {
		req.Header.Set("X-Client-Request-Id", requestID)
	}
}

// isValidClientRequestID checks if the request ID is valid for OpenAI's X-Client-Request-Id header.
func isValidClientRequestID(id string) bool {
	if len(id) > 512 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] > 127 {
			return false
		}
	}
	return true
}
