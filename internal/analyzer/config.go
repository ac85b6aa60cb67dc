package analyzer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ToneCategory defines one tone bucket: any keyword match places a record in
// the bucket, and the weight scales average engagement into effectiveness.
// Slice order is the tie-break order for effectiveness ranking.
type ToneCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Weight   float64  `yaml:"weight"`
}

// Definitions holds the tunable vocabulary the analyzer classifies with.
// Defaults ship in-code; a YAML file can override individual sections.
type Definitions struct {
	ToneCategories []ToneCategory `yaml:"tone_categories"`
	Stopwords      []string       `yaml:"stopwords"`
}

// DefaultDefinitions returns the built-in classification vocabulary
func DefaultDefinitions() Definitions {
	return Definitions{
		ToneCategories: []ToneCategory{
			{
				Name:     "question",
				Keywords: []string{"?", "what", "how", "why", "when", "where", "which", "who"},
				Weight:   1.2,
			},
			{
				Name:     "statement",
				Keywords: []string{"is", "are", "will", "according to", "in fact", "the truth"},
				Weight:   1.0,
			},
			{
				Name:     "call_to_action",
				Keywords: []string{"check out", "click", "follow", "share", "retweet", "join", "sign up", "try"},
				Weight:   1.3,
			},
			{
				Name:     "story",
				Keywords: []string{"once", "remember", "story", "journey", "when i", "years ago", "back then"},
				Weight:   1.1,
			},
			{
				Name:     "tip",
				Keywords: []string{"tip", "how to", "pro tip", "advice", "trick", "lesson"},
				Weight:   1.25,
			},
		},
		Stopwords: []string{
			"the", "and", "for", "are", "but", "not", "you", "all", "can", "her",
			"was", "one", "our", "out", "day", "get", "has", "him", "his", "how",
			"its", "new", "now", "old", "see", "two", "way", "who", "with", "this",
			"that", "they", "them", "then", "than", "what", "when", "from", "have",
			"will", "your", "about", "just", "like", "into", "over", "some", "more",
		},
	}
}

// LoadDefinitions merges a YAML override file on top of the defaults. Only
// sections present in the file replace their default counterparts.
func LoadDefinitions(path string) (Definitions, error) {
	defs := DefaultDefinitions()
	if path == "" {
		return defs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defs, fmt.Errorf("read pattern definitions: %w", err)
	}

	var override Definitions
	if err := yaml.Unmarshal(data, &override); err != nil {
		return defs, fmt.Errorf("parse pattern definitions: %w", err)
	}

	if len(override.ToneCategories) > 0 {
		defs.ToneCategories = override.ToneCategories
	}
	if len(override.Stopwords) > 0 {
		defs.Stopwords = override.Stopwords
	}
	return defs, nil
}

func (d Definitions) stopwordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(d.Stopwords))
	for _, w := range d.Stopwords {
		set[w] = struct{}{}
	}
	return set
}
