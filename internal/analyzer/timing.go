package analyzer

import (
	"sort"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

func (a *Analyzer) timePatterns(records []models.RepostRecord) models.TimePatterns {
	patterns := models.TimePatterns{
		Hours:    make(map[int]models.TimeBucketStats),
		Days:     make(map[int]models.TimeBucketStats),
		TopHours: []models.TimeBucketStats{},
		TopDays:  []models.TimeBucketStats{},
	}
	if len(records) == 0 {
		return patterns
	}

	tally := func(buckets map[int]models.TimeBucketStats, idx int, engagement int) {
		b := buckets[idx]
		b.Bucket = idx
		b.Count++
		b.TotalEngagement += engagement
		buckets[idx] = b
	}

	for _, r := range records {
		tally(patterns.Hours, r.Timestamp.Hour(), r.Engagement())
		tally(patterns.Days, int(r.Timestamp.Weekday()), r.Engagement())
	}

	finalize := func(buckets map[int]models.TimeBucketStats) []models.TimeBucketStats {
		ranked := make([]models.TimeBucketStats, 0, len(buckets))
		for idx, b := range buckets {
			b.AvgEngagement = float64(b.TotalEngagement) / float64(b.Count)
			buckets[idx] = b
			ranked = append(ranked, b)
		}
		// Highest average engagement first; equal averages resolve to the
		// lower bucket index.
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].AvgEngagement != ranked[j].AvgEngagement {
				return ranked[i].AvgEngagement > ranked[j].AvgEngagement
			}
			return ranked[i].Bucket < ranked[j].Bucket
		})
		if len(ranked) > 3 {
			ranked = ranked[:3]
		}
		return ranked
	}

	patterns.TopHours = finalize(patterns.Hours)
	patterns.TopDays = finalize(patterns.Days)
	return patterns
}
