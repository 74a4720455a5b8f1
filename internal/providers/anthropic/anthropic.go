// Package anthropic provides the Anthropic text collaborator.
package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

const (
	providerName        = "anthropic"
	defaultBaseURL      = "https://api.anthropic.com/v1"
	anthropicAPIVersion = "2023-06-01"
	defaultModel        = "claude-3-5-haiku-latest"
	defaultMaxTokens    = 1500
)

// Registration provides factory registration for the Anthropic text collaborator.
var Registration = providers.Registration[core.TextGenerator]{
	Type: providerName,
	New: func(cfg providers.Config, opts providers.Options) (core.TextGenerator, error) {
		return New(cfg, opts), nil
	},
}

// Provider generates text through the Messages API.
type Provider struct {
	client    *llmclient.Client
	apiKey    string
	model     string
	maxTokens int
}

// New creates the Anthropic text collaborator.
func New(cfg providers.Config, opts providers.Options) *Provider {
	p := &Provider{apiKey: cfg.APIKey, model: cfg.Model, maxTokens: cfg.MaxTokens}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = defaultMaxTokens
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p.client = opts.NewClient(opts.ClientConfig(providers.KindText, providerName, baseURL, p.model), p.setHeaders)
	return p
}

// Name returns "anthropic".
func (p *Provider) Name() string { return providerName }

// Model returns the configured model id.
func (p *Provider) Model() string { return p.model }

// setHeaders sets the required headers for Anthropic API requests
func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)
}

// anthropicRequest represents the Anthropic API request format
type anthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

// anthropicMessage represents a message in Anthropic format
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends prompt as a single user message and joins the returned text blocks.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/messages",
		Body: anthropicRequest{
			Model:     p.model,
			Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
			MaxTokens: p.maxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, block := range gjson.GetBytes(resp.Body, "content").Array() {
		if block.Get("type").String() == "text" {
			parts = append(parts, block.Get("text").String())
		}
	}
	text := strings.Join(parts, "")
	if text == "" {
		return "", providers.MissingField(providerName, "content.#.text", resp.Body)
	}
	return text, nil
}
