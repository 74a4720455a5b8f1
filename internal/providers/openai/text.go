package openai

import (
	"context"
	"net/http"

	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

// Text generates text through /chat/completions.
type Text struct {
	*base
	maxTokens int
}

// NewText creates the OpenAI text collaborator.
func NewText(cfg providers.Config, opts providers.Options) *Text {
	t := &Text{base: newBase(providers.KindText, cfg, opts, defaultTextModel), maxTokens: cfg.MaxTokens}
	if t.maxTokens <= 0 {
		t.maxTokens = defaultMaxTokens
	}
	return t
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// Generate sends prompt as a single user message and returns the first choice.
func (t *Text) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := t.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body: chatRequest{
			Model:     t.model,
			Messages:  []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens: t.maxTokens,
		},
	})
	if err != nil {
		return "", err
	}
	return providers.RequireString(providerName, resp.Body, "choices.0.message.content")
}
