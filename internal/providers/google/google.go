// Package google provides the Google Cloud Text-to-Speech and Speech-to-Text collaborators.
package google

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

const (
	providerName            = "google"
	defaultSpeechBaseURL    = "https://texttospeech.googleapis.com/v1"
	defaultRecognitionURL   = "https://speech.googleapis.com/v1"
	defaultAudioEncoding    = "MP3"
	defaultRecognitionModel = "default"
	defaultSpeechModelLabel = "standard"
)

// Registrations for each collaborator kind.
var (
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
)

func apiKeyHeader(apiKey string) llmclient.HeaderSetter {
	return func(req *http.Request) {
		req.Header.Set("X-Goog-Api-Key", apiKey)
	}
}

// Speech synthesizes SSML narration through text:synthesize.
type Speech struct {
	client *llmclient.Client
	model  string
}

// NewSpeech creates the Google speech collaborator.
func NewSpeech(cfg providers.Config, opts providers.Options) *Speech {
	s := &Speech{model: cfg.Model}
	if s.model == "" {
		s.model = defaultSpeechModelLabel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSpeechBaseURL
	}
	s.client = opts.NewClient(opts.ClientConfig(providers.KindSpeech, providerName, baseURL, s.model), apiKeyHeader(cfg.APIKey))
	return s
}

// Name returns "google".
func (s *Speech) Name() string { return providerName }

// Model returns the configured voice model label.
func (s *Speech) Model() string { return s.model }

type synthesizeRequest struct {
	Input struct {
		SSML string `json:"ssml"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

// Synthesize sends req.Markup and returns the decoded audioContent.
// A malformed markup document is rejected upstream with a 400.
func (s *Speech) Synthesize(ctx context.Context, req core.SpeechRequest) ([]byte, error) {
	var body synthesizeRequest
	body.Input.SSML = req.Markup
	body.Voice.LanguageCode = req.LanguageCode
	body.Voice.Name = req.VoiceID
	body.AudioConfig.AudioEncoding = defaultAudioEncoding

	resp, err := s.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/text:synthesize",
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	encoded, err := providers.RequireString(providerName, resp.Body, "audioContent")
	if err != nil {
		return nil, err
	}
	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, core.NewUpstreamFormatError(providerName, "audioContent is not valid base64", err)
	}
	return audio, nil
}

// Recognizer transcribes audio through speech:recognize.
type Recognizer struct {
	client   *llmclient.Client
	model    string
	encoding string
}

// NewRecognizer creates the Google recognition collaborator.
func NewRecognizer(cfg providers.Config, opts providers.Options) *Recognizer {
	r := &Recognizer{model: cfg.Model, encoding: cfg.Encoding}
	if r.model == "" {
		r.model = defaultRecognitionModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultRecognitionURL
	}
	r.client = opts.NewClient(opts.ClientConfig(providers.KindRecognition, providerName, baseURL, r.model), apiKeyHeader(cfg.APIKey))
	return r
}

// Name returns "google".
func (r *Recognizer) Name() string { return providerName }

// Model returns the configured recognition model.
func (r *Recognizer) Model() string { return r.model }

type recognitionConfig struct {
	LanguageCode               string `json:"languageCode"`
	Encoding                   string `json:"encoding,omitempty"`
	Model                      string `json:"model,omitempty"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  struct {
		Content string `json:"content"`
	} `json:"audio"`
}

// Transcribe returns the top alternative of every result, joined by spaces.
// Silence yields an empty transcript rather than an error.
func (r *Recognizer) Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error) {
	var body recognizeRequest
	body.Config = recognitionConfig{
		LanguageCode:               languageCode,
		Encoding:                   r.encoding,
		EnableAutomaticPunctuation: true,
	}
	if r.model != defaultRecognitionModel {
		body.Config.Model = r.model
	}
	body.Audio.Content = base64.StdEncoding.EncodeToString(audio)

	resp, err := r.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/speech:recognize",
		Body:     body,
	})
	if err != nil {
		return "", err
	}

	parsed := gjson.ParseBytes(resp.Body)
	if !parsed.IsObject() {
		return "", providers.MissingField(providerName, "results", resp.Body)
	}
	var parts []string
	for _, t := range parsed.Get("results.#.alternatives.0.transcript").Array() {
		if s := strings.TrimSpace(t.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}
