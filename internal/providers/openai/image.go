package openai

import (
	"context"
	"net/http"

	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

// Image generates diagrams through /images/generations.
type Image struct {
	*base
	size string
}

// NewImage creates the OpenAI image collaborator.
func NewImage(cfg providers.Config, opts providers.Options) *Image {
	img := &Image{base: newBase(providers.KindImage, cfg, opts, defaultImageModel), size: cfg.Size}
	if img.size == "" {
		img.size = defaultImageSize
	}
	return img
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

// GenerateImage returns the first generated image as base64.
func (i *Image) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := i.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/images/generations",
		Body: imageRequest{
			Model:          i.model,
			Prompt:         prompt,
			N:              1,
			Size:           i.size,
			ResponseFormat: "b64_json",
		},
	})
	if err != nil {
		return "", err
	}
	return providers.RequireString(providerName, resp.Body, "data.0.b64_json")
}
