package analyzer

import (
	"sort"
	"strings"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

const mixedTone = "mixed"

func (a *Analyzer) tonePatterns(records []models.RepostRecord) models.TonePatterns {
	patterns := models.TonePatterns{
		Distribution: make(map[string]models.ToneStats),
		Top:          []models.ToneStats{},
	}
	if len(records) == 0 {
		return patterns
	}

	tally := func(tone string, engagement int) {
		stats := patterns.Distribution[tone]
		stats.Tone = tone
		stats.Count++
		stats.TotalEngagement += engagement
		patterns.Distribution[tone] = stats
	}

	for _, r := range records {
		text := strings.ToLower(r.OriginalText)
		matched := 0
		for _, cat := range a.defs.ToneCategories {
			for _, kw := range cat.Keywords {
				if strings.Contains(text, kw) {
					tally(cat.Name, r.Engagement())
					matched++
					break
				}
			}
		}
		if matched >= 2 {
			tally(mixedTone, r.Engagement())
		}
	}

	for tone, stats := range patterns.Distribution {
		stats.AvgEngagement = float64(stats.TotalEngagement) / float64(stats.Count)
		stats.Effectiveness = stats.AvgEngagement * a.toneWeight(tone)
		patterns.Distribution[tone] = stats
	}

	// Rank in definition order first so equal effectiveness resolves to the
	// earlier category; the mixed bucket ranks last among ties.
	ranked := make([]models.ToneStats, 0, len(patterns.Distribution))
	for _, cat := range a.defs.ToneCategories {
		if stats, ok := patterns.Distribution[cat.Name]; ok {
			ranked = append(ranked, stats)
		}
	}
	if stats, ok := patterns.Distribution[mixedTone]; ok {
		ranked = append(ranked, stats)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Effectiveness > ranked[j].Effectiveness
	})

	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	patterns.Top = ranked
	return patterns
}

func (a *Analyzer) toneWeight(tone string) float64 {
	for _, cat := range a.defs.ToneCategories {
		if cat.Name == tone {
			return cat.Weight
		}
	}
	return 1.0
}
