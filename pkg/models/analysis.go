package models

import "time"

// AnalysisSummary holds aggregate counts for one analysis run
type AnalysisSummary struct {
	TotalRecords    int        `json:"total_records"`
	TotalEngagement int        `json:"total_engagement"`
	AvgEngagement   float64    `json:"avg_engagement"`
	UniqueHandles   int        `json:"unique_handles"`
	OldestRecord    *time.Time `json:"oldest_record,omitempty"`
	NewestRecord    *time.Time `json:"newest_record,omitempty"`
}

// LengthRange is an inclusive character-length range
type LengthRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n falls inside the range
func (lr LengthRange) Contains(n int) bool {
	return n >= lr.Min && n <= lr.Max
}

// Width returns the size of the range
func (lr LengthRange) Width() int {
	return lr.Max - lr.Min
}

// LengthBucketStats holds per-length-category aggregates
type LengthBucketStats struct {
	Count           int     `json:"count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
}

// OptimalLength identifies the length category with the highest average engagement
type OptimalLength struct {
	Category      string      `json:"category"`
	Range         LengthRange `json:"range"`
	AvgEngagement float64     `json:"avg_engagement"`
}

// LengthPatterns is the length section of an analysis snapshot
type LengthPatterns struct {
	Distribution map[string]LengthBucketStats `json:"distribution"`
	Correlation  float64                      `json:"correlation"`
	Optimal      *OptimalLength               `json:"optimal,omitempty"`
}

// ToneStats holds per-tone-category aggregates
type ToneStats struct {
	Tone            string  `json:"tone"`
	Count           int     `json:"count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
	Effectiveness   float64 `json:"effectiveness"`
}

// TonePatterns is the tone section of an analysis snapshot
type TonePatterns struct {
	Distribution map[string]ToneStats `json:"distribution"`
	Top          []ToneStats          `json:"top"`
}

// FormatBucketStats holds aggregates for one occurrence-count bucket of a format element
type FormatBucketStats struct {
	Count           int     `json:"count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
}

// FormatStats holds the bucket distribution and optimal count for one format element
type FormatStats struct {
	Buckets              map[string]FormatBucketStats `json:"buckets"`
	OptimalCount         int                          `json:"optimal_count"`
	OptimalAvgEngagement float64                      `json:"optimal_avg_engagement"`
}

// FormatPatterns is the format section of an analysis snapshot
type FormatPatterns struct {
	Formats map[string]FormatStats `json:"formats"`
}

// MetricCorrelation names the strongest engagement correlate
type MetricCorrelation struct {
	Metric      string  `json:"metric"`
	Coefficient float64 `json:"coefficient"`
}

// EngagementCorrelation is the correlation section of an analysis snapshot
type EngagementCorrelation struct {
	Metrics   map[string]float64 `json:"metrics"`
	Strongest *MetricCorrelation `json:"strongest,omitempty"`
}

// TimeBucketStats holds per-hour or per-day aggregates. Bucket is an
// hour-of-day (0-23) or day-of-week (0=Sunday..6=Saturday) index.
type TimeBucketStats struct {
	Bucket          int     `json:"bucket"`
	Count           int     `json:"count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
}

// TimePatterns is the timing section of an analysis snapshot
type TimePatterns struct {
	Hours    map[int]TimeBucketStats `json:"hours"`
	Days     map[int]TimeBucketStats `json:"days"`
	TopHours []TimeBucketStats       `json:"top_hours"`
	TopDays  []TimeBucketStats       `json:"top_days"`
}

// TermStats holds aggregates for one word or phrase
type TermStats struct {
	Term            string  `json:"term"`
	Count           int     `json:"count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
}

// ContentTypeStats holds aggregates for one content-type bucket
type ContentTypeStats struct {
	Count           int     `json:"count"`
	TotalEngagement int     `json:"total_engagement"`
	AvgEngagement   float64 `json:"avg_engagement"`
}

// ContentPatterns is the lexical section of an analysis snapshot
type ContentPatterns struct {
	TopWords   []TermStats                 `json:"top_words"`
	TopPhrases []TermStats                 `json:"top_phrases"`
	Types      map[string]ContentTypeStats `json:"types"`
}

// Recommendation is one actionable suggestion derived from a snapshot
type Recommendation struct {
	Kind        PatternKind `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    string      `json:"priority"`
}

// AnalysisSnapshot is the output of one analysis run over a bounded window of
// repost records for a given scope. Every section is always present, possibly
// empty; zero matching records yields an empty snapshot rather than an error.
type AnalysisSnapshot struct {
	Scope                 string                `json:"scope"`
	RecordLimit           int                   `json:"record_limit"`
	GeneratedAt           time.Time             `json:"generated_at"`
	Summary               AnalysisSummary       `json:"summary"`
	LengthPatterns        LengthPatterns        `json:"length_patterns"`
	TonePatterns          TonePatterns          `json:"tone_patterns"`
	FormatPatterns        FormatPatterns        `json:"format_patterns"`
	EngagementCorrelation EngagementCorrelation `json:"engagement_correlation"`
	TimePatterns          TimePatterns          `json:"time_patterns"`
	ContentPatterns       ContentPatterns       `json:"content_patterns"`
	Recommendations       []Recommendation      `json:"recommendations"`
}

// SnapshotInfo is one row of snapshot history without the full payload
type SnapshotInfo struct {
	ID          string    `json:"id"`
	Scope       string    `json:"scope"`
	RecordLimit int       `json:"record_limit"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Empty reports whether the snapshot was produced from zero records
func (s *AnalysisSnapshot) Empty() bool {
	return s.Summary.TotalRecords == 0
}
