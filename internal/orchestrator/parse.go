package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"edugate/internal/core"
	"edugate/internal/ssml"
)

var (
	paragraphSplit = regexp.MustCompile(`\n[ \t]*\n`)
	headingMarker  = regexp.MustCompile(`(?m)^\s*#{1,6}\s*`)
	emphasisMarker = regexp.MustCompile(`\*\*|__`)
	listNumbering  = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)
	sectionLabel   = regexp.MustCompile(`(?i)^\s*(?:section|part|step)\s*\d+\s*[-–:.)]?\s*`)
	namedLabel     = regexp.MustCompile(`(?i)^\s*(?:introduction|intro|explanation|analogy|real[- ]world analogy|example|recap|summary|conclusion|overview)\s*[-–:.]\s*`)
	labelOnlyLine  = regexp.MustCompile(`(?i)^\s*(?:introduction|intro|explanation|analogy|real[- ]world analogy|example|recap|summary|conclusion|overview)\s*:?\s*$`)
	titleLabel     = regexp.MustCompile(`(?i)^\s*title\s*[-–:]\s*`)
	quizLabel      = regexp.MustCompile(`(?i)^\s*(?:quick\s+)?quiz\b(?:\s*(?:question|time)s?)?\s*[-–:.]?\s*`)
)

var refusalPhrases = []string{
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"as an ai",
	"i cannot help",
	"i can't help",
	"i cannot provide",
	"i can't provide",
	"unable to assist",
	"unable to provide",
}

// IsUsableLesson reports whether generated text is long enough and is not a refusal.
func IsUsableLesson(text string, minChars int) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minChars {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// cleanParagraph strips generator labels and markup from one paragraph.
func cleanParagraph(p string) string {
	p = headingMarker.ReplaceAllString(p, "")
	p = emphasisMarker.ReplaceAllString(p, "")

	lines := strings.Split(p, "\n")
	if len(lines) > 1 && labelOnlyLine.MatchString(lines[0]) {
		lines = lines[1:]
	}
	p = strings.Join(lines, "\n")

	p = listNumbering.ReplaceAllString(p, "")
	p = sectionLabel.ReplaceAllString(p, "")
	p = namedLabel.ReplaceAllString(p, "")
	return strings.TrimSpace(p)
}

// ParseLesson splits generated text into a lesson record. Paragraphs shorter
// than minParagraph characters are dropped; missing sections, title and quiz
// are filled with generic text, so all four sections are always non-empty.
func ParseLesson(raw, topic string, grade int, language string, minParagraph int) *core.LessonRecord {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var title, quiz string
	sections := make([]string, 0, 4)

	paragraphs := paragraphSplit.Split(raw, -1)
	for i, p := range paragraphs {
		// Labels are checked before cleaning so "Title:" is not mistaken for noise
		stripped := strings.TrimSpace(emphasisMarker.ReplaceAllString(headingMarker.ReplaceAllString(p, ""), ""))

		if title == "" && titleLabel.MatchString(stripped) {
			first, rest, _ := strings.Cut(titleLabel.ReplaceAllString(stripped, ""), "\n")
			title = strings.TrimSpace(first)
			if rest = cleanParagraph(rest); utf8.RuneCountInString(rest) >= minParagraph {
				sections = append(sections, rest)
			}
			continue
		}

		if quizLabel.MatchString(stripped) {
			parts := []string{strings.TrimSpace(quizLabel.ReplaceAllString(stripped, ""))}
			for _, q := range paragraphs[i+1:] {
				parts = append(parts, strings.TrimSpace(emphasisMarker.ReplaceAllString(q, "")))
			}
			quiz = strings.TrimSpace(strings.Join(parts, "\n\n"))
			break
		}

		cleaned := cleanParagraph(p)
		if utf8.RuneCountInString(cleaned) < minParagraph {
			continue
		}
		sections = append(sections, cleaned)
	}

	topic = strings.TrimSpace(topic)
	placeholders := placeholderSections(topic)
	for len(sections) < 4 {
		sections = append(sections, placeholders[len(sections)])
	}
	if title == "" {
		title = "Understanding " + topic
	}
	if quiz == "" {
		quiz = defaultQuiz(topic)
	}

	return &core.LessonRecord{
		Title:        title,
		Introduction: sections[0],
		Explanation:  sections[1],
		Analogy:      sections[2],
		Recap:        sections[3],
		Quiz:         quiz,
		Language:     strings.ToLower(strings.TrimSpace(language)),
		Grade:        grade,
		CreatedAt:    time.Now().UTC(),
	}
}

func placeholderSections(topic string) []string {
	return []string{
		fmt.Sprintf("In this lesson we explore %s and why it matters in the world around us.", topic),
		fmt.Sprintf("%s can be understood step by step. Think about what you already know and build on it.", topic),
		fmt.Sprintf("Try to connect %s to something you see every day at home or at school.", topic),
		fmt.Sprintf("Today we learned the key ideas behind %s. Review them once more in your own words.", topic),
	}
}

func defaultQuiz(topic string) string {
	return fmt.Sprintf("How would you explain %s to a friend in your own words?", topic)
}

// FallbackLesson builds a lesson locally when the generator keeps returning
// unusable text.
func FallbackLesson(topic string, grade int, language string) *core.LessonRecord {
	topic = strings.TrimSpace(topic)
	return &core.LessonRecord{
		Title: "Understanding " + topic,
		Introduction: fmt.Sprintf("Welcome! Today we begin learning about %s, a topic that helps us understand "+
			"how things work around us.", topic),
		Explanation: fmt.Sprintf("%s has a few important ideas. Your teacher and textbook for grade %d will "+
			"walk you through each of them with examples.", topic, grade),
		Analogy: fmt.Sprintf("Learning about %s is like putting together a puzzle: each small piece you "+
			"understand makes the whole picture clearer.", topic),
		Recap: fmt.Sprintf("We introduced %s and saw why it is worth learning. Keep your questions ready "+
			"for the next class.", topic),
		Quiz:      defaultQuiz(topic),
		Language:  strings.ToLower(strings.TrimSpace(language)),
		Grade:     grade,
		CreatedAt: time.Now().UTC(),
		Fallback:  true,
	}
}

// NarrationText joins the lesson sections with pause directives.
func NarrationText(l *core.LessonRecord) string {
	parts := make([]string, 0, 5)
	if l.Title != "" {
		parts = append(parts, l.Title)
	}
	for _, s := range l.Sections() {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "+ssml.Pause+" ")
}
