package visualizer

import (
	"fmt"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// ChartData is label/series data shaped for a client-side charting library.
// Values are rounded to 2 decimal places.
type ChartData struct {
	Labels []string             `json:"labels"`
	Series map[string][]float64 `json:"series"`
}

// Bucket orders mirror the analyzer's reporting order
var (
	lengthOrder = []string{"short", "medium", "long"}
	formatOrder = []string{"0", "1", "2", "3", "4", "5", "5+"}
)

// LengthChartData shapes the length distribution into count and average
// engagement series over the short/medium/long buckets
func LengthChartData(snap *models.AnalysisSnapshot) ChartData {
	chart := newChart(lengthOrder)
	for i, category := range lengthOrder {
		if stats, ok := snap.LengthPatterns.Distribution[category]; ok {
			chart.Series["count"][i] = float64(stats.Count)
			chart.Series["avg_engagement"][i] = round2(stats.AvgEngagement)
		}
	}
	return chart
}

// ToneChartData shapes the ranked top tones, effectiveness order preserved
func ToneChartData(snap *models.AnalysisSnapshot) ChartData {
	labels := make([]string, 0, len(snap.TonePatterns.Top))
	for _, stats := range snap.TonePatterns.Top {
		labels = append(labels, stats.Tone)
	}
	chart := newChart(labels)
	chart.Series["effectiveness"] = make([]float64, len(labels))
	for i, stats := range snap.TonePatterns.Top {
		chart.Series["count"][i] = float64(stats.Count)
		chart.Series["avg_engagement"][i] = round2(stats.AvgEngagement)
		chart.Series["effectiveness"][i] = round2(stats.Effectiveness)
	}
	return chart
}

// FormatChartData shapes one format element's bucket distribution over the
// fixed 0..5+ bucket order. Unknown formats yield an all-zero chart.
func FormatChartData(snap *models.AnalysisSnapshot, format string) ChartData {
	chart := newChart(formatOrder)
	stats, ok := snap.FormatPatterns.Formats[format]
	if !ok {
		return chart
	}
	for i, bucket := range formatOrder {
		if b, ok := stats.Buckets[bucket]; ok {
			chart.Series["count"][i] = float64(b.Count)
			chart.Series["avg_engagement"][i] = round2(b.AvgEngagement)
		}
	}
	return chart
}

// HourChartData shapes the hour-of-day distribution over all 24 hours
func HourChartData(snap *models.AnalysisSnapshot) ChartData {
	labels := make([]string, 24)
	for h := 0; h < 24; h++ {
		labels[h] = fmt.Sprintf("%02d:00", h)
	}
	chart := newChart(labels)
	for h, stats := range snap.TimePatterns.Hours {
		if h < 0 || h > 23 {
			continue
		}
		chart.Series["count"][h] = float64(stats.Count)
		chart.Series["avg_engagement"][h] = round2(stats.AvgEngagement)
	}
	return chart
}

// DayChartData shapes the day-of-week distribution, Sunday first
func DayChartData(snap *models.AnalysisSnapshot) ChartData {
	labels := make([]string, 7)
	for d := 0; d < 7; d++ {
		labels[d] = time.Weekday(d).String()
	}
	chart := newChart(labels)
	for d, stats := range snap.TimePatterns.Days {
		if d < 0 || d > 6 {
			continue
		}
		chart.Series["count"][d] = float64(stats.Count)
		chart.Series["avg_engagement"][d] = round2(stats.AvgEngagement)
	}
	return chart
}

// ContentTypeChartData shapes per-content-type averages in the analyzer's
// classification priority order
func ContentTypeChartData(snap *models.AnalysisSnapshot) ChartData {
	order := []string{"question", "tip", "story", "call_to_action", "fact", "general"}
	chart := newChart(order)
	for i, name := range order {
		if stats, ok := snap.ContentPatterns.Types[name]; ok {
			chart.Series["count"][i] = float64(stats.Count)
			chart.Series["avg_engagement"][i] = round2(stats.AvgEngagement)
		}
	}
	return chart
}

func newChart(labels []string) ChartData {
	return ChartData{
		Labels: append([]string(nil), labels...),
		Series: map[string][]float64{
			"count":          make([]float64, len(labels)),
			"avg_engagement": make([]float64, len(labels)),
		},
	}
}
