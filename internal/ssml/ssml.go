// Package ssml builds speech-markup documents for narration.
package ssml

import (
	"fmt"
	"regexp"
	"strings"
)

// Pause is the directive inserted between narration sections.
const Pause = `<break time="800ms"/>`

var breakPattern = regexp.MustCompile(`<break\b[^<>]*/>`)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// placeholder markers are Unicode private-use runes, which neither the
// escaper nor ordinary narration text produce.
const (
	placeholderOpen  = "\uE000"
	placeholderClose = "\uE001"
)

// Build converts plain narration text into a speech-markup document.
// Existing <break .../> directives survive unescaped; everything else has
// & < > " ' escaped. Build is meant to run once per text: running it on its
// own output escapes the entities again.
func Build(text string) string {
	var directives []string
	protected := breakPattern.ReplaceAllStringFunc(text, func(m string) string {
		directives = append(directives, m)
		return fmt.Sprintf("%s%d%s", placeholderOpen, len(directives)-1, placeholderClose)
	})

	escaped := escaper.Replace(protected)

	for i, d := range directives {
		escaped = strings.Replace(escaped, fmt.Sprintf("%s%d%s", placeholderOpen, i, placeholderClose), d, 1)
	}

	return `<speak><prosody rate="medium" pitch="medium">` + escaped + `</prosody></speak>`
}

// StripDirectives removes pause directives, for collaborators that take plain text.
func StripDirectives(text string) string {
	return strings.Join(strings.Fields(breakPattern.ReplaceAllString(text, " ")), " ")
}
