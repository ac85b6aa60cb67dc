package analyzer

import (
	"math"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/stats"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Engagement metrics in tie-break order for the strongest-correlate report
var correlationMetrics = []struct {
	Name  string
	Value func(models.RepostRecord) int
}{
	{"repost_count", func(r models.RepostRecord) int { return r.RepostCount }},
	{"like_count", func(r models.RepostRecord) int { return r.LikeCount }},
	{"reply_count", func(r models.RepostRecord) int { return r.ReplyCount }},
	{"quote_count", func(r models.RepostRecord) int { return r.QuoteCount }},
}

func (a *Analyzer) engagementCorrelation(records []models.RepostRecord) models.EngagementCorrelation {
	correlation := models.EngagementCorrelation{
		Metrics: make(map[string]float64, len(correlationMetrics)),
	}
	if len(records) == 0 {
		return correlation
	}

	for _, metric := range correlationMetrics {
		// Zero entries are treated as absent and skipped for this metric.
		xs := make([]float64, 0, len(records))
		ys := make([]float64, 0, len(records))
		for _, r := range records {
			v := metric.Value(r)
			if v == 0 {
				continue
			}
			xs = append(xs, float64(v))
			ys = append(ys, float64(r.RepostCount))
		}
		if len(xs) == 0 {
			continue
		}

		coeff := stats.Pearson(xs, ys)
		correlation.Metrics[metric.Name] = coeff

		if correlation.Strongest == nil || math.Abs(coeff) > math.Abs(correlation.Strongest.Coefficient) {
			correlation.Strongest = &models.MetricCorrelation{Metric: metric.Name, Coefficient: coeff}
		}
	}

	return correlation
}
