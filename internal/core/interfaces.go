// Package core defines the core interfaces and types for the lesson gateway.
package core

import "context"

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SpeechRequest carries both renditions of the narration so each speech
// variant can pick the one its upstream accepts.
type SpeechRequest struct {
	Text         string
	Markup       string
	VoiceID      string
	LanguageCode string
}

// SpeechSynthesizer turns narration into encoded audio bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// VoiceResolver is implemented by synthesizers that choose their own voice
// rather than using SpeechRequest.VoiceID as given.
type VoiceResolver interface {
	ResolveVoice(req SpeechRequest) string
}

// SpeechRecognizer turns recorded audio into text.
type SpeechRecognizer interface {
	Transcribe(ctx context.Context, audio []byte, languageCode string) (string, error)
}

// ImageGenerator turns a prompt into a base64-encoded image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Collaborator describes the upstream behind a collaborator implementation,
// used for logs, metrics and the call ledger.
type Collaborator interface {
	Name() string
	Model() string
}
