package models

import "time"

// PatternKind is the closed set of pattern categories the validator can apply.
// Dispatch on pattern kinds is exhaustive; unknown kinds are rejected at the
// boundary instead of silently no-opping.
type PatternKind string

const (
	PatternLength  PatternKind = "length"
	PatternTone    PatternKind = "tone"
	PatternFormat  PatternKind = "format"
	PatternContent PatternKind = "content"
	PatternTiming  PatternKind = "timing"
)

// Valid reports whether k is a known pattern kind
func (k PatternKind) Valid() bool {
	switch k {
	case PatternLength, PatternTone, PatternFormat, PatternContent, PatternTiming:
		return true
	}
	return false
}

// PatternToggles selects which pattern categories ApplyPatterns attempts.
// Each category is applied independently.
type PatternToggles struct {
	Length  bool `json:"length"`
	Tone    bool `json:"tone"`
	Format  bool `json:"format"`
	Content bool `json:"content"`
}

// Any reports whether at least one category is enabled
func (t PatternToggles) Any() bool {
	return t.Length || t.Tone || t.Format || t.Content
}

// LengthApplication carries the parameters of an applied length transform
type LengthApplication struct {
	Target         LengthRange `json:"target"`
	OriginalLength int         `json:"original_length"`
	FinalLength    int         `json:"final_length"`
}

// ToneApplication carries the parameters of an applied tone transform
type ToneApplication struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Effectiveness float64 `json:"effectiveness"`
}

// FormatAdjustment records how one format element count was changed
type FormatAdjustment struct {
	Before        int     `json:"before"`
	After         int     `json:"after"`
	Optimal       int     `json:"optimal"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// FormatApplication carries the parameters of applied format transforms
type FormatApplication struct {
	Hashtags *FormatAdjustment `json:"hashtags,omitempty"`
	Emojis   *FormatAdjustment `json:"emojis,omitempty"`
}

// ContentSuggestions carries word/phrase additions suggested (never applied
// directly to the content string)
type ContentSuggestions struct {
	Words   []TermStats `json:"words"`
	Phrases []TermStats `json:"phrases"`
}

// AppliedPatterns is the tagged record of which pattern kinds were applied to
// a piece of content and with what parameters. A nil field means the kind was
// not applied.
type AppliedPatterns struct {
	Length  *LengthApplication  `json:"length,omitempty"`
	Tone    *ToneApplication    `json:"tone,omitempty"`
	Format  *FormatApplication  `json:"format,omitempty"`
	Content *ContentSuggestions `json:"content,omitempty"`
}

// Empty reports whether no pattern kinds were applied
func (a AppliedPatterns) Empty() bool {
	return a.Length == nil && a.Tone == nil && a.Format == nil && a.Content == nil
}

// AppliedPatternResult is the output of applying snapshot patterns to one
// piece of draft content. Confidence is 0-100 and is 0 whenever no patterns
// were applied.
type AppliedPatternResult struct {
	Content         string                   `json:"content"`
	OriginalContent string                   `json:"original_content"`
	Applied         AppliedPatterns          `json:"applied_patterns"`
	Modifications   map[PatternKind][]string `json:"modifications"`
	Confidence      float64                  `json:"confidence"`
}

// ABTestStatus is the lifecycle state of an A/B test
type ABTestStatus string

const (
	ABTestActive    ABTestStatus = "active"
	ABTestCompleted ABTestStatus = "completed"
	ABTestPaused    ABTestStatus = "paused"
)

// ABVariant is one arm of an A/B test
type ABVariant struct {
	Content         string          `json:"content"`
	PatternsApplied AppliedPatterns `json:"patterns_applied"`
	Weight          float64         `json:"weight"`
}

// ABMetrics accumulates performance counters for one variant. Rates are
// recomputed as cumulative ratios on every update.
type ABMetrics struct {
	Impressions    int     `json:"impressions"`
	Reposts        int     `json:"reposts"`
	Engagement     int     `json:"engagement"`
	RepostRate     float64 `json:"repost_rate"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Recalculate refreshes the derived rates from the raw counters
func (m *ABMetrics) Recalculate() {
	if m.Impressions > 0 {
		m.RepostRate = float64(m.Reposts) / float64(m.Impressions)
		m.EngagementRate = float64(m.Engagement) / float64(m.Impressions)
	} else {
		m.RepostRate = 0
		m.EngagementRate = 0
	}
}

// ABTest is a control/test content pair with accumulating metrics. Variant
// weights sum to 1.0 at creation.
type ABTest struct {
	ID             string       `json:"test_id"`
	Scope          string       `json:"scope"`
	Control        ABVariant    `json:"control"`
	Test           ABVariant    `json:"test"`
	ControlMetrics ABMetrics    `json:"control_metrics"`
	TestMetrics    ABMetrics    `json:"test_metrics"`
	Status         ABTestStatus `json:"status"`
	StartDate      time.Time    `json:"start_date"`
	EndDate        time.Time    `json:"end_date"`
}

// MetricsFor returns the metrics for the named variant ("control" or "test")
func (t *ABTest) MetricsFor(variant string) (*ABMetrics, bool) {
	switch variant {
	case "control":
		return &t.ControlMetrics, true
	case "test":
		return &t.TestMetrics, true
	}
	return nil, false
}

// ABTestResult is the outcome of analyzing an A/B test
type ABTestResult struct {
	TestID      string    `json:"test_id"`
	Winner      string    `json:"winner,omitempty"`
	Confidence  float64   `json:"confidence"`
	ZScore      float64   `json:"z_score"`
	Significant bool      `json:"significant"`
	Improvement float64   `json:"improvement"`
	Control     ABMetrics `json:"control"`
	Test        ABMetrics `json:"test"`
	Reason      string    `json:"reason,omitempty"`
}

// PatternPerformanceSample is one timestamped observation of a pattern's
// real-world outcome. Samples are append-only and never updated in place.
type PatternPerformanceSample struct {
	Kind        PatternKind        `json:"pattern_type"`
	Fingerprint string             `json:"pattern_fingerprint"`
	RepostRate  float64            `json:"repost_rate"`
	Performance map[string]float64 `json:"performance,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Trend directions reported by decay detection
const (
	TrendDeclining    = "declining"
	TrendImproving    = "improving"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient_data"
)

// DecayResult is the outcome of decay detection for one pattern fingerprint
type DecayResult struct {
	Kind          PatternKind `json:"pattern_type"`
	Fingerprint   string      `json:"pattern_fingerprint"`
	DecayDetected bool        `json:"decay_detected"`
	Confidence    float64     `json:"confidence"`
	Trend         string      `json:"trend"`
	Slope         float64     `json:"slope"`
	Samples       int         `json:"samples"`
	Reason        string      `json:"reason,omitempty"`
}

// PatternScore is the visualizer's composite effectiveness score for a
// snapshot. TotalScore is 0-100, the sum of four sub-scores capped at 25 each.
type PatternScore struct {
	TotalScore      float64            `json:"total_score"`
	Grade           string             `json:"grade"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations"`
}
