package orchestrator

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"edugate/internal/core"
	"edugate/internal/relevance"
	"edugate/internal/voice"
)

// Input bounds, in characters.
const (
	MaxTopicChars     = 200
	MaxQuestionChars  = 1000
	MaxNarrationInput = 5000
	MinGrade          = 1
	MaxGrade          = 12
)

// LessonRequest asks for a lesson on topic for grade in language.
type LessonRequest struct {
	Topic    string `json:"topic"`
	Grade    int    `json:"grade"`
	Language string `json:"language"`
}

// DoubtRequest asks a follow-up question about a lesson topic.
type DoubtRequest struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
	Grade    int    `json:"grade"`
	Language string `json:"language"`
}

// AudioRequest asks for narration of arbitrary text.
type AudioRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	VoiceID  string `json:"voiceId"`
}

// DiagramRequest asks for an illustration of a topic.
type DiagramRequest struct {
	Topic    string `json:"topic"`
	Grade    int    `json:"grade"`
	Language string `json:"language"`
	Style    string `json:"style,omitempty"`
}

// TranscribeRequest carries base64-encoded recorded audio.
type TranscribeRequest struct {
	AudioData string `json:"audioData"`
	Language  string `json:"language"`
}

// violations collects every failed rule of one request.
type violations []core.Violation

func (v *violations) add(field, format string, args ...any) {
	*v = append(*v, core.Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return core.NewValidationError(v)
}

func (v *violations) text(field, value string, maxChars int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n == 0:
		v.add(field, "is required")
	case n > maxChars:
		v.add(field, "must be at most %d characters", maxChars)
	}
}

func (v *violations) grade(grade int) {
	if grade < MinGrade || grade > MaxGrade {
		v.add("grade", "must be between %d and %d", MinGrade, MaxGrade)
	}
}

func (v *violations) language(lang string) {
	switch {
	case strings.TrimSpace(lang) == "":
		v.add("language", "is required")
	case !voice.IsSupportedLanguage(lang):
		v.add("language", "must be one of %s", strings.Join(voice.SupportedLanguages(), ", "))
	}
}

// Validate reports every invalid field.
func (r *LessonRequest) Validate() error {
	var v violations
	v.text("topic", r.Topic, MaxTopicChars)
	v.grade(r.Grade)
	v.language(r.Language)
	return v.err()
}

// Validate reports every invalid field.
func (r *DoubtRequest) Validate() error {
	var v violations
	v.text("question", r.Question, MaxQuestionChars)
	v.text("topic", r.Topic, MaxTopicChars)
	v.grade(r.Grade)
	v.language(r.Language)
	return v.err()
}

// Validate reports every invalid field.
func (r *AudioRequest) Validate() error {
	var v violations
	v.text("text", r.Text, MaxNarrationInput)
	v.language(r.Language)
	return v.err()
}

// Validate reports every invalid field.
func (r *DiagramRequest) Validate() error {
	var v violations
	v.text("topic", r.Topic, MaxTopicChars)
	v.grade(r.Grade)
	v.language(r.Language)
	if style := strings.TrimSpace(r.Style); style != "" && !relevance.IsValidStyle(strings.ToLower(style)) {
		styles := make([]string, len(relevance.Styles))
		for i, s := range relevance.Styles {
			styles[i] = string(s)
		}
		v.add("style", "must be one of %s", strings.Join(styles, ", "))
	}
	return v.err()
}

// Validate reports every invalid field and returns the decoded audio.
func (r *TranscribeRequest) Validate(maxBytes int) ([]byte, error) {
	var v violations
	var audio []byte

	data := stripDataURL(strings.TrimSpace(r.AudioData))
	if data == "" {
		v.add("audioData", "is required")
	} else if decoded, err := base64.StdEncoding.DecodeString(data); err != nil {
		v.add("audioData", "must be valid base64")
	} else if len(decoded) == 0 {
		v.add("audioData", "is required")
	} else if len(decoded) > maxBytes {
		v.add("audioData", "must be at most %d bytes", maxBytes)
	} else {
		audio = decoded
	}
	v.language(r.Language)

	if err := v.err(); err != nil {
		return nil, err
	}
	return audio, nil
}

// stripDataURL removes a "data:audio/webm;base64," prefix browsers add.
func stripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if _, payload, ok := strings.Cut(s, ","); ok {
		return payload
	}
	return s
}
