package analyzer

import (
	"regexp"
	"strconv"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

var formatRegexps = []struct {
	Name string
	Re   *regexp.Regexp
}{
	{"hashtags", regexp.MustCompile(`#\w+`)},
	{"emojis", regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}]`)},
	{"urls", regexp.MustCompile(`https?://[^\s]+`)},
	{"mentions", regexp.MustCompile(`@\w+`)},
}

const overflowBucket = "5+"

func formatBucketKey(count int) string {
	if count > 5 {
		return overflowBucket
	}
	return strconv.Itoa(count)
}

func (a *Analyzer) formatPatterns(records []models.RepostRecord) models.FormatPatterns {
	patterns := models.FormatPatterns{
		Formats: make(map[string]models.FormatStats, len(formatRegexps)),
	}
	if len(records) == 0 {
		return patterns
	}

	for _, format := range formatRegexps {
		stats := models.FormatStats{Buckets: make(map[string]models.FormatBucketStats)}

		for _, r := range records {
			count := len(format.Re.FindAllString(r.OriginalText, -1))
			key := formatBucketKey(count)
			bucket := stats.Buckets[key]
			bucket.Count++
			bucket.TotalEngagement += r.Engagement()
			stats.Buckets[key] = bucket
		}

		bestAvg := -1.0
		for key, bucket := range stats.Buckets {
			bucket.AvgEngagement = float64(bucket.TotalEngagement) / float64(bucket.Count)
			stats.Buckets[key] = bucket

			n := bucketToCount(key)
			if bucket.AvgEngagement > bestAvg || (bucket.AvgEngagement == bestAvg && n < stats.OptimalCount) {
				bestAvg = bucket.AvgEngagement
				stats.OptimalCount = n
				stats.OptimalAvgEngagement = bucket.AvgEngagement
			}
		}

		patterns.Formats[format.Name] = stats
	}

	return patterns
}

// bucketToCount maps a bucket key back to an integer count; the overflow
// bucket reports as 5.
func bucketToCount(key string) int {
	if key == overflowBucket {
		return 5
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0
	}
	return n
}
