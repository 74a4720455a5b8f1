package openai

import (
	"context"
	"net/http"
	"strings"

	"edugate/internal/core"
	"edugate/internal/llmclient"
	"edugate/internal/providers"
)

// Recognizer transcribes audio through the multipart /audio/transcriptions endpoint.
type Recognizer struct {
	*base
}

// NewRecognizer creates the OpenAI recognition collaborator.
func NewRecognizer(cfg providers.Config, opts providers.Options) *Recognizer {
	return &Recognizer{base: newBase(providers.KindRecognition, cfg, opts, defaultRecognitionModel)}
}

// Transcribe uploads audio and returns the recognized text. languageCode may be
// a locale ("hi-IN"); only its language part is sent.
func (r *Recognizer) Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error) {
	fields := map[string]string{
		"model":           r.model,
		"response_format": "json",
	}
	if lang, _, _ := strings.Cut(languageCode, "-"); lang != "" {
		fields["language"] = strings.ToLower(lang)
	}

	body, contentType, err := llmclient.MultipartBody(fields, llmclient.MultipartFile{
		Field:    "file",
		FileName: "audio.webm",
		Data:     audio,
	})
	if err != nil {
		return "", core.NewInvalidRequestError("failed to encode audio upload", err)
	}

	resp, err := r.client.DoRaw(ctx, llmclient.Request{
		Method:      http.MethodPost,
		Endpoint:    "/audio/transcriptions",
		RawBody:     body,
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return providers.RequireString(providerName, resp.Body, "text")
}
