// Package relevance decides whether a topic warrants a generated diagram and
// which rendering style suits it.
package relevance

import "strings"

// Style is a diagram rendering style.
type Style string

// Supported diagram styles
const (
	StyleFlowchart         Style = "flowchart"
	StyleIllustration      Style = "illustration"
	StyleScientificDiagram Style = "scientific-diagram"
	StyleAbstract          Style = "abstract"
	StyleIconic            Style = "iconic"
)

// Styles lists every supported style.
var Styles = []Style{
	StyleFlowchart,
	StyleIllustration,
	StyleScientificDiagram,
	StyleAbstract,
	StyleIconic,
}

// IsValidStyle reports whether s names a supported style (case-insensitive).
func IsValidStyle(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, style := range Styles {
		if string(style) == s {
			return true
		}
	}
	return false
}

// visualKeywords are matched as lower-case substrings of the topic.
var visualKeywords = []string{
	// biology
	"photosynthesis", "cell", "plant", "animal", "organ", "heart", "lung", "brain",
	"digestive", "skeleton", "muscle", "blood", "dna", "gene", "reproduction",
	"ecosystem", "food chain", "food web", "life cycle", "habitat", "respiration",
	"nervous", "bacteria", "virus", "flower", "leaf", "root", "seed", "insect",
	"evolution", "anatomy",

	// physics
	"force", "motion", "gravity", "energy", "light", "sound", "wave", "magnet",
	"electric", "circuit", "current", "lens", "mirror", "reflection", "refraction",
	"pressure", "friction", "lever", "pulley", "machine", "heat", "temperature",
	"orbit", "planet", "solar", "star", "moon", "galaxy", "universe",

	// chemistry
	"atom", "molecule", "element", "compound", "reaction", "acid", "base",
	"periodic table", "bond", "electron", "proton", "neutron", "mixture",
	"solution", "states of matter", "matter",

	// earth science
	"water cycle", "rock", "volcano", "earthquake", "plate", "weather", "climate",
	"cloud", "rain", "river", "ocean", "mountain", "soil", "erosion", "atmosphere",
	"season", "tide", "map", "continent", "layers of the earth",

	// geometry and math
	"triangle", "circle", "square", "rectangle", "polygon", "angle", "geometry",
	"graph", "coordinate", "symmetry", "shape", "area", "volume", "perimeter",
	"fraction", "pythagoras", "theorem",

	// technology
	"computer", "network", "internet", "algorithm", "robot", "engine", "rocket",
	"satellite", "electricity", "generator", "motor", "transistor",

	// generic process terms
	"cycle", "process", "system", "structure", "diagram", "flow", "stages",
	"steps", "parts of", "layers", "model",
}

// NeedsVisualDiagram reports whether topic contains any visual keyword.
// Matching is case-insensitive and by substring; the first match wins.
func NeedsVisualDiagram(topic string) bool {
	t := strings.ToLower(topic)
	for _, kw := range visualKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

type styleRule struct {
	keywords []string
	style    Style
}

// styleRules are evaluated in order; only the first matching rule applies.
var styleRules = []styleRule{
	{keywords: []string{"cycle", "process", "algorithm"}, style: StyleFlowchart},
	{keywords: []string{"animal", "plant", "ecosystem"}, style: StyleIllustration},
	{keywords: []string{"cell", "atom", "system", "organ", "reproduction"}, style: StyleScientificDiagram},
	{keywords: []string{"concept", "relationship"}, style: StyleAbstract},
}

// SuggestedStyle maps a topic to a rendering style, defaulting to iconic.
func SuggestedStyle(topic string) Style {
	t := strings.ToLower(topic)
	for _, rule := range styleRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.style
			}
		}
	}
	return StyleIconic
}
