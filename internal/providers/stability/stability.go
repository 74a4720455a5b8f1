// Package stability provides the Stability AI image collaborator.
package stability

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

const (
	providerName   = "stability"
	defaultBaseURL = "https://api.stability.ai/v1"
	defaultEngine  = "stable-diffusion-xl-1024-v1-0"
	defaultSize    = 1024
)

// Registration provides factory registration for the Stability image collaborator.
var Registration = providers.Registration[core.ImageGenerator]{
	Type: providerName,
	New: func(cfg providers.Config, opts providers.Options) (core.ImageGenerator, error) {
		return New(cfg, opts), nil
	},
}

// Provider generates images through the v1 text-to-image endpoint.
type Provider struct {
	client *llmclient.Client
	apiKey string
	engine string
	width  int
	height int
}

// New creates the Stability image collaborator. cfg.Model names the engine
// and cfg.Size ("WxH") the output dimensions.
func New(cfg providers.Config, opts providers.Options) *Provider {
	p := &Provider{apiKey: cfg.APIKey, engine: cfg.Model, width: defaultSize, height: defaultSize}
	if p.engine == "" {
		p.engine = defaultEngine
	}
	if w, h, ok := parseSize(cfg.Size); ok {
		p.width, p.height = w, h
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	p.client = opts.NewClient(opts.ClientConfig(providers.KindImage, providerName, baseURL, p.engine), p.setHeaders)
	return p
}

func parseSize(size string) (int, int, bool) {
	ws, hs, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(strings.TrimSpace(ws))
	h, errH := strconv.Atoi(strings.TrimSpace(hs))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// Name returns "stability".
func (p *Provider) Name() string { return providerName }

// Model returns the engine id.
func (p *Provider) Model() string { return p.engine }

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")
}

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type textToImageRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Samples     int          `json:"samples"`
	Steps       int          `json:"steps"`
}

// GenerateImage returns the first artifact as base64.
func (p *Provider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/generation/" + url.PathEscape(p.engine) + "/text-to-image",
		Body: textToImageRequest{
			TextPrompts: []textPrompt{{Text: prompt, Weight: 1}},
			CfgScale:    7,
			Height:      p.height,
			Width:       p.width,
			Samples:     1,
			Steps:       30,
		},
	})
	if err != nil {
		return "", err
	}
	return providers.RequireString(providerName, resp.Body, "artifacts.0.base64")
}
