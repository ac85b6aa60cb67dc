package analyzer

import (
	"unicode/utf8"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/stats"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Length categories in tie-break order: when two categories have the same
// average engagement the earlier one wins.
var lengthBuckets = []struct {
	Name  string
	Range models.LengthRange
}{
	{"short", models.LengthRange{Min: 0, Max: 100}},
	{"medium", models.LengthRange{Min: 101, Max: 200}},
	{"long", models.LengthRange{Min: 201, Max: 280}},
}

func lengthCategory(n int) string {
	switch {
	case n <= 100:
		return "short"
	case n <= 200:
		return "medium"
	default:
		return "long"
	}
}

func (a *Analyzer) lengthPatterns(records []models.RepostRecord) models.LengthPatterns {
	patterns := models.LengthPatterns{
		Distribution: make(map[string]models.LengthBucketStats, len(lengthBuckets)),
	}
	if len(records) == 0 {
		return patterns
	}

	lengths := make([]float64, 0, len(records))
	engagement := make([]float64, 0, len(records))
	for _, r := range records {
		n := utf8.RuneCountInString(r.OriginalText)
		category := lengthCategory(n)
		bucket := patterns.Distribution[category]
		bucket.Count++
		bucket.TotalEngagement += r.Engagement()
		patterns.Distribution[category] = bucket

		lengths = append(lengths, float64(n))
		engagement = append(engagement, float64(r.Engagement()))
	}

	for category, bucket := range patterns.Distribution {
		bucket.AvgEngagement = float64(bucket.TotalEngagement) / float64(bucket.Count)
		patterns.Distribution[category] = bucket
	}

	patterns.Correlation = stats.Pearson(lengths, engagement)

	for _, lb := range lengthBuckets {
		bucket, ok := patterns.Distribution[lb.Name]
		if !ok || bucket.Count == 0 {
			continue
		}
		if patterns.Optimal == nil || bucket.AvgEngagement > patterns.Optimal.AvgEngagement {
			patterns.Optimal = &models.OptimalLength{
				Category:      lb.Name,
				Range:         lb.Range,
				AvgEngagement: bucket.AvgEngagement,
			}
		}
	}

	return patterns
}
