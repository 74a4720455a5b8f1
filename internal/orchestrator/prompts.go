package orchestrator

import (
	"fmt"

	"edugate/internal/relevance"
	"edugate/internal/voice"
)

func lessonPrompt(topic string, grade int, language string) string {
	return fmt.Sprintf(`You are a friendly teacher. Write a short lesson about "%s" for a grade %d student, in %s.

Start with a line "Title: <lesson title>". Then write four paragraphs separated by blank lines:
an introduction, a clear explanation, a real-world analogy and a short recap.
Finish with a paragraph starting with "Quiz:" containing one question to check understanding.
Use simple words and keep every paragraph under 120 words.`,
		topic, grade, voice.LanguageName(language))
}

func doubtPrompt(question, topic string, grade int, language string) string {
	return fmt.Sprintf(`A grade %d student learning about "%s" asks: "%s"

Answer in %s in at most 150 words, using simple words and one everyday example.
Reply with the answer only.`,
		grade, topic, question, voice.LanguageName(language))
}

func diagramPrompt(topic string, grade int, style relevance.Style) string {
	return fmt.Sprintf(
		"A clean, labeled %s explaining %s for grade %d students. White background, bright colors, no paragraphs of text.",
		styleDescription(style), topic, grade)
}

func styleDescription(style relevance.Style) string {
	switch style {
	case relevance.StyleFlowchart:
		return "flowchart with arrows between steps"
	case relevance.StyleIllustration:
		return "friendly textbook illustration"
	case relevance.StyleScientificDiagram:
		return "scientific diagram"
	case relevance.StyleAbstract:
		return "abstract concept map"
	default:
		return "simple iconic picture"
	}
}
