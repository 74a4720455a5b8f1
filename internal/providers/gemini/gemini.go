// Package gemini provides the Google Gemini text collaborator.
package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

const (
	providerName   = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Registration provides factory registration for the Gemini text collaborator.
var Registration = providers.Registration[core.TextGenerator]{
	Type: providerName,
	New: func(cfg providers.Config, opts providers.Options) (core.TextGenerator, error) {
		return New(cfg, opts), nil
	},
}

// Provider generates text through generateContent.
type Provider struct {
	client    *llmclient.Client
	apiKey    string
	model     string
	maxTokens int
}

// New creates the Gemini text collaborator.
func New(cfg providers.Config, opts providers.Options) *Provider {
	p := &Provider{apiKey: cfg.APIKey, model: strings.TrimPrefix(cfg.Model, "models/"), maxTokens: cfg.MaxTokens}
	if p.model == "" {
		p.model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p.client = opts.NewClient(opts.ClientConfig(providers.KindText, providerName, baseURL, p.model), p.setHeaders)
	return p
}

// Name returns "gemini".
func (p *Provider) Name() string { return providerName }

// Model returns the configured model id.
func (p *Provider) Model() string { return p.model }

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", p.apiKey)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

// Generate sends prompt and joins the text parts of the first candidate.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if p.maxTokens > 0 {
		req.GenerationConfig = &generationConfig{MaxOutputTokens: p.maxTokens}
	}

	resp, err := p.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/models/" + url.PathEscape(p.model) + ":generateContent",
		Body:     req,
	})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, pt := range gjson.GetBytes(resp.Body, "candidates.0.content.parts").Array() {
		parts = append(parts, pt.Get("text").String())
	}
	text := strings.Join(parts, "")
	if text == "" {
		return "", providers.MissingField(providerName, "candidates.0.content.parts", resp.Body)
	}
	return text, nil
}
