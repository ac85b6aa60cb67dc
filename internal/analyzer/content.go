package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Content-type classifiers in priority order; the first match wins and every
// record lands in exactly one bucket.
var contentTypeClassifiers = []struct {
	Name string
	Re   *regexp.Regexp
}{
	{"question", regexp.MustCompile(`\?`)},
	{"tip", regexp.MustCompile(`(?i)\b(tip|how to|advice|guide)\b`)},
	{"story", regexp.MustCompile(`(?i)\b(story|once|journey|remember|years ago)\b`)},
	{"call_to_action", regexp.MustCompile(`(?i)\b(check out|click|follow|share|join|sign up|subscribe)\b`)},
	{"fact", regexp.MustCompile(`(?i)(\b(fact|study|studies|research|according to|data)\b|\d+%)`)},
}

const fallbackContentType = "general"

const (
	maxTopWords   = 20
	maxTopPhrases = 10
)

func classifyContentType(text string) string {
	for _, classifier := range contentTypeClassifiers {
		if classifier.Re.MatchString(text) {
			return classifier.Name
		}
	}
	return fallbackContentType
}

type termAccumulator struct {
	count           int
	totalEngagement int
}

func (a *Analyzer) contentPatterns(records []models.RepostRecord) models.ContentPatterns {
	patterns := models.ContentPatterns{
		TopWords:   []models.TermStats{},
		TopPhrases: []models.TermStats{},
		Types:      make(map[string]models.ContentTypeStats),
	}
	if len(records) == 0 {
		return patterns
	}

	words := make(map[string]*termAccumulator)
	phrases := make(map[string]*termAccumulator)

	for _, r := range records {
		engagement := r.Engagement()
		tokens := tokenize(r.OriginalText)

		for _, tok := range tokens {
			if len(tok) <= 2 {
				continue
			}
			if _, stop := a.stopwords[tok]; stop {
				continue
			}
			acc := words[tok]
			if acc == nil {
				acc = &termAccumulator{}
				words[tok] = acc
			}
			acc.count++
			acc.totalEngagement += engagement
		}

		for _, phrase := range extractPhrases(tokens) {
			acc := phrases[phrase]
			if acc == nil {
				acc = &termAccumulator{}
				phrases[phrase] = acc
			}
			acc.count++
			acc.totalEngagement += engagement
		}

		contentType := classifyContentType(r.OriginalText)
		stats := patterns.Types[contentType]
		stats.Count++
		stats.TotalEngagement += engagement
		patterns.Types[contentType] = stats
	}

	for contentType, stats := range patterns.Types {
		stats.AvgEngagement = float64(stats.TotalEngagement) / float64(stats.Count)
		patterns.Types[contentType] = stats
	}

	patterns.TopWords = rankTerms(words, maxTopWords)
	patterns.TopPhrases = rankTerms(phrases, maxTopPhrases)
	return patterns
}

// tokenize lowercases, splits on whitespace, and strips leading/trailing
// punctuation per token. Empty tokens are dropped.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.Trim(f, `.,!?;:"'()[]{}#@&*~`)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// extractPhrases yields contiguous 2-4 token phrases longer than 5 characters
func extractPhrases(tokens []string) []string {
	var out []string
	for size := 2; size <= 4; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			phrase := strings.TrimSpace(strings.Join(tokens[i:i+size], " "))
			if len(phrase) > 5 {
				out = append(out, phrase)
			}
		}
	}
	return out
}

func rankTerms(terms map[string]*termAccumulator, max int) []models.TermStats {
	ranked := make([]models.TermStats, 0, len(terms))
	for term, acc := range terms {
		ranked = append(ranked, models.TermStats{
			Term:            term,
			Count:           acc.count,
			TotalEngagement: acc.totalEngagement,
			AvgEngagement:   float64(acc.totalEngagement) / float64(acc.count),
		})
	}
	// Average engagement descending; ties resolve by frequency then term so
	// the ordering is stable across runs.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgEngagement != ranked[j].AvgEngagement {
			return ranked[i].AvgEngagement > ranked[j].AvgEngagement
		}
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}
