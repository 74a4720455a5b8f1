// Package voice selects narration voices and prepares narration text.
package voice

import (
	"fmt"
	"math"
	"strings"
)

// DefaultLanguage is used for narration when the requested language has no native voice.
const DefaultLanguage = "en"

// Voice is one synthesis voice.
type Voice struct {
	ID           string
	LanguageCode string
	// Name is the human-readable language name used in fallback notes.
	Name string
}

// Selection is the outcome of picking a voice for a request.
type Selection struct {
	Voice
	UsingFallback   bool
	FallbackMessage string
	// VoiceNote explains why a requested voice id was not used.
	VoiceNote string
}

// Supported request languages and their display names.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
	"bn": "Bengali",
	"mr": "Marathi",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
}

// nativeVoices lists the languages narrated in their own voice.
var nativeVoices = map[string]Voice{
	"en": {ID: "en-IN-Wavenet-D", LanguageCode: "en-IN", Name: "English"},
	"hi": {ID: "hi-IN-Wavenet-A", LanguageCode: "hi-IN", Name: "Hindi"},
}

// IsSupportedLanguage reports whether lang is an accepted request language (case-insensitive).
func IsSupportedLanguage(lang string) bool {
	_, ok := languageNames[normalize(lang)]
	return ok
}

// SupportedLanguages returns the accepted request language codes.
func SupportedLanguages() []string {
	return []string{"en", "hi", "ta", "te", "bn", "mr", "gu", "kn", "ml", "pa"}
}

// LanguageName returns the display name for lang, or lang itself when unknown.
func LanguageName(lang string) string {
	lang = normalize(lang)
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return lang
}

// Locale returns the regional locale used for recognition, e.g. "ta" -> "ta-IN".
func Locale(lang string) string {
	return normalize(lang) + "-IN"
}

// Catalog maps request languages to voices.
type Catalog struct {
	voices map[string]Voice
}

// NewCatalog returns the built-in voice table with optional voice id
// overrides keyed by native language code ("en", "hi").
func NewCatalog(overrides map[string]string) *Catalog {
	voices := make(map[string]Voice, len(nativeVoices))
	for lang, v := range nativeVoices {
		if id := strings.TrimSpace(overrides[lang]); id != "" {
			v.ID = id
		}
		voices[lang] = v
	}
	return &Catalog{voices: voices}
}

// Select picks the voice for lang. A requested voice id is honoured when it
// belongs to the selected language code; otherwise it is replaced and
// VoiceNote says so. Languages without a native voice get the default
// language's voice and an explicit fallback note.
func (c *Catalog) Select(lang, requestedVoiceID string) Selection {
	lang = normalize(lang)

	sel := Selection{}
	if v, ok := c.voices[lang]; ok {
		sel.Voice = v
	} else {
		sel.Voice = c.voices[DefaultLanguage]
		sel.UsingFallback = true
		sel.FallbackMessage = fallbackMessage(lang, sel.Voice)
	}

	requestedVoiceID = strings.TrimSpace(requestedVoiceID)
	switch {
	case requestedVoiceID == "":
	case strings.HasPrefix(strings.ToLower(requestedVoiceID), strings.ToLower(sel.LanguageCode)):
		sel.ID = requestedVoiceID
	default:
		sel.VoiceNote = fmt.Sprintf("Voice %q does not match %s; %s was used instead.",
			requestedVoiceID, sel.LanguageCode, sel.ID)
	}
	return sel
}

func fallbackMessage(lang string, v Voice) string {
	return fmt.Sprintf("Narration in %s is not available yet; the %s (%s) voice was used instead.",
		LanguageName(lang), v.Name, v.LanguageCode)
}

// Truncate shortens text to at most maxChars characters, ending with "...".
// A pause directive is never cut in half; other "<" characters are plain
// text. It reports whether text was shortened.
func Truncate(text string, maxChars int) (string, bool) {
	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return text, false
	}
	const ellipsis = "..."

	cut := maxChars - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	head := string(runes[:cut])
	if open := strings.LastIndex(head, "<"); open > strings.LastIndex(head, ">") && partialDirective(head[open:]) {
		head = head[:open]
	}
	return head + ellipsis, true
}

// partialDirective reports whether fragment, which starts at a "<" with no
// closing ">", is the cut-off start of a <break .../> directive.
func partialDirective(fragment string) bool {
	const directive = "<break"
	lower := strings.ToLower(fragment)
	return strings.HasPrefix(lower, directive) || strings.HasPrefix(directive, lower)
}

// EstimateDuration returns the spoken length of text in seconds at the given
// words-per-minute rate, rounded to one decimal.
func EstimateDuration(text string, wordsPerMinute int) float64 {
	if wordsPerMinute <= 0 {
		return 0
	}
	words := len(strings.Fields(text))
	seconds := float64(words) / float64(wordsPerMinute) * 60
	return math.Round(seconds*10) / 10
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
