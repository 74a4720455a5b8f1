package core

import "time"

// Resource identifies one cached resource class. Each resource owns its own
// cache namespace and counters.
type Resource string

const (
	ResourceLesson      Resource = "lesson"
	ResourceLessonAudio Resource = "lesson-audio"
	ResourceDoubt       Resource = "doubt"
	ResourceDoubtAudio  Resource = "doubt-audio"
	ResourceAudio       Resource = "audio"
	ResourceDiagram     Resource = "diagram"
	ResourceTranscribe  Resource = "transcribe"
)

// LessonRecord is the parsed lesson stored in the lesson cache.
// All four narrative sections are always non-empty.
type LessonRecord struct {
	Title        string    `json:"title"`
	Introduction string    `json:"introduction"`
	Explanation  string    `json:"explanation"`
	Analogy      string    `json:"analogy"`
	Recap        string    `json:"recap"`
	Quiz         string    `json:"quiz"`
	Language     string    `json:"language"`
	Grade        int       `json:"grade"`
	CreatedAt    time.Time `json:"createdAt"`
	// Fallback is true when the lesson was synthesized locally because the
	// generator kept returning unusable text.
	Fallback bool `json:"fallback"`
}

// Sections returns the four narrative sections in reading order.
func (l *LessonRecord) Sections() []string {
	return []string{l.Introduction, l.Explanation, l.Analogy, l.Recap}
}

// AudioRecord is a synthesized narration clip.
type AudioRecord struct {
	Audio           string  `json:"audio"`
	VoiceID         string  `json:"voiceId"`
	LanguageCode    string  `json:"languageCode"`
	UsingFallback   bool    `json:"usingFallback"`
	FallbackMessage string  `json:"fallbackMessage,omitempty"`
	VoiceNote       string  `json:"voiceNote,omitempty"`
	DurationSeconds float64 `json:"durationSeconds"`
	Truncated       bool    `json:"truncated"`
}

// DiagramRecord is a generated illustration.
type DiagramRecord struct {
	Image string `json:"image"`
	Style string `json:"style"`
}

// DoubtAnswerRecord is a generated answer to a student question.
type DoubtAnswerRecord struct {
	Answer string `json:"answer"`
}

// Stats is the reporting view of one resource's counters.
type Stats struct {
	APICalls      int64   `json:"apiCalls"`
	CacheHits     int64   `json:"cacheHits"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	Fallbacks     int64   `json:"fallbacks,omitempty"`
	Skipped       int64   `json:"skipped,omitempty"`
	AudioFailures int64   `json:"audioFailures,omitempty"`
}
