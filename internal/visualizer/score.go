// Package visualizer turns analysis snapshots into presentation artifacts: a
// composite effectiveness score with a letter grade, and chart-ready
// label/series data. Everything here is a pure function of the snapshot.
package visualizer

import (
	"math"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// Each factor contributes at most 25 points to the 0-100 total
const (
	factorCap      = 25.0
	weakThreshold  = 15.0
	engagementMult = 25.0
	sectionMult    = 2.5
)

// Factor names in reporting order
var factorOrder = []string{"length", "tone", "format", "engagement"}

var gradeTable = []struct {
	Min   float64
	Grade string
}{
	{95, "A+"},
	{85, "A"},
	{75, "B+"},
	{65, "B"},
	{55, "C+"},
	{45, "C"},
	{35, "D"},
	{0, "F"},
}

var weakFactorAdvice = map[string]string{
	"length":     "Engagement by length is weak. Aim drafts at the optimal length range before posting.",
	"tone":       "No tone stands out. Lean into the top effective tone instead of mixing styles.",
	"format":     "Format elements are underused. Match hashtag and emoji counts to their optimal buckets.",
	"engagement": "Engagement metrics barely correlate. Collect more records before trusting these patterns.",
}

// Score grades how actionable a snapshot's patterns are. Missing sections
// contribute 0 to their factor, never an error.
func Score(snap *models.AnalysisSnapshot) models.PatternScore {
	factors := map[string]float64{
		"length":     lengthFactor(snap),
		"tone":       toneFactor(snap),
		"format":     formatFactor(snap),
		"engagement": engagementFactor(snap),
	}

	var total float64
	var recommendations []string
	for _, name := range factorOrder {
		total += factors[name]
		if factors[name] < weakThreshold {
			recommendations = append(recommendations, weakFactorAdvice[name])
		}
	}

	return models.PatternScore{
		TotalScore:      round2(total),
		Grade:           grade(total),
		Factors:         roundFactors(factors),
		Recommendations: recommendations,
	}
}

func lengthFactor(snap *models.AnalysisSnapshot) float64 {
	if snap.LengthPatterns.Optimal == nil {
		return 0
	}
	return math.Min(factorCap, snap.LengthPatterns.Optimal.AvgEngagement*sectionMult)
}

func toneFactor(snap *models.AnalysisSnapshot) float64 {
	if len(snap.TonePatterns.Top) == 0 {
		return 0
	}
	return math.Min(factorCap, snap.TonePatterns.Top[0].Effectiveness*sectionMult)
}

// formatFactor averages the per-format sub-scores so a single loud format
// cannot carry the whole factor
func formatFactor(snap *models.AnalysisSnapshot) float64 {
	if len(snap.FormatPatterns.Formats) == 0 {
		return 0
	}
	var total float64
	for _, stats := range snap.FormatPatterns.Formats {
		total += math.Min(factorCap, stats.OptimalAvgEngagement*sectionMult)
	}
	return total / float64(len(snap.FormatPatterns.Formats))
}

func engagementFactor(snap *models.AnalysisSnapshot) float64 {
	if snap.EngagementCorrelation.Strongest == nil {
		return 0
	}
	return math.Min(factorCap, math.Abs(snap.EngagementCorrelation.Strongest.Coefficient)*engagementMult)
}

func grade(total float64) string {
	for _, entry := range gradeTable {
		if total >= entry.Min {
			return entry.Grade
		}
	}
	return "F"
}

func roundFactors(factors map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(factors))
	for name, v := range factors {
		out[name] = round2(v)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
