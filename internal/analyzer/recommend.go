package analyzer

import (
	"fmt"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Format elements in deterministic emission order for recommendations
var recommendedFormats = []string{"hashtags", "emojis", "urls", "mentions"}

// recommendations derives actionable suggestions from the computed sections.
// Empty sections produce no recommendation.
func recommendations(snap *models.AnalysisSnapshot) []models.Recommendation {
	recs := []models.Recommendation{}

	if optimal := snap.LengthPatterns.Optimal; optimal != nil {
		recs = append(recs, models.Recommendation{
			Kind:  models.PatternLength,
			Title: "Optimize content length",
			Description: fmt.Sprintf("Aim for %d-%d characters; %s posts average %.1f reposts",
				optimal.Range.Min, optimal.Range.Max, optimal.Category, optimal.AvgEngagement),
			Priority: "high",
		})
	}

	if len(snap.TonePatterns.Top) > 0 {
		top := snap.TonePatterns.Top[0]
		recs = append(recs, models.Recommendation{
			Kind:  models.PatternTone,
			Title: "Lead with the most effective tone",
			Description: fmt.Sprintf("%q content scores %.1f effectiveness across %d posts",
				top.Tone, top.Effectiveness, top.Count),
			Priority: "high",
		})
	}

	for _, name := range recommendedFormats {
		stats, ok := snap.FormatPatterns.Formats[name]
		if !ok || stats.OptimalCount == 0 {
			continue
		}
		recs = append(recs, models.Recommendation{
			Kind:  models.PatternFormat,
			Title: fmt.Sprintf("Use %d %s", stats.OptimalCount, name),
			Description: fmt.Sprintf("Posts with %d %s average %.1f reposts",
				stats.OptimalCount, name, stats.OptimalAvgEngagement),
			Priority: "medium",
		})
	}

	if len(snap.TimePatterns.TopHours) > 0 {
		best := snap.TimePatterns.TopHours[0]
		recs = append(recs, models.Recommendation{
			Kind:  models.PatternTiming,
			Title: "Post at the best-performing hour",
			Description: fmt.Sprintf("Posts published at %02d:00 average %.1f reposts",
				best.Bucket, best.AvgEngagement),
			Priority: "medium",
		})
	}

	return recs
}
