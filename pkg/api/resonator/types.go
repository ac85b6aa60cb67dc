package resonator

import (
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/api/common"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// ErrorResponse is the standard error envelope
type ErrorResponse = common.ErrorResponse

// AnalysisResponse represents the response from GetAnalysis
type AnalysisResponse = models.AnalysisSnapshot

// ApplyPatternsRequest selects patterns to apply to draft content
type ApplyPatternsRequest struct {
	Content string                `json:"content" binding:"required"`
	Toggles models.PatternToggles `json:"toggles"`
	Scope   string                `json:"scope"`
}

// ApplyPatternsResponse represents the response from ApplyPatterns
type ApplyPatternsResponse = models.AppliedPatternResult

// ScoreResponse represents the response from GetScore
type ScoreResponse = models.PatternScore

// SetupABTestRequest creates a control/test content pair
type SetupABTestRequest struct {
	Content      string                `json:"content" binding:"required"`
	Toggles      models.PatternToggles `json:"toggles"`
	Scope        string                `json:"scope"`
	DurationDays int                   `json:"duration_days"`
}

// ABTestResponse represents the response from SetupABTest and TrackABTest
type ABTestResponse = models.ABTest

// TrackABTestRequest accumulates a metrics delta into one variant
type TrackABTestRequest struct {
	Variant string           `json:"variant" binding:"required"`
	Delta   models.ABMetrics `json:"delta"`
}

// ABTestResultResponse represents the response from GetABTestResults
type ABTestResultResponse = models.ABTestResult

// TrackPerformanceRequest appends one pattern performance observation
type TrackPerformanceRequest struct {
	PatternType models.PatternKind     `json:"pattern_type" binding:"required"`
	Params      map[string]interface{} `json:"params"`
	Performance map[string]float64     `json:"performance"`
}

// TrackPerformanceResponse returns the fingerprint samples were filed under
type TrackPerformanceResponse struct {
	Fingerprint string `json:"fingerprint"`
}

// DecayRequest runs decay detection over a pattern's recent samples
type DecayRequest struct {
	PatternType models.PatternKind     `json:"pattern_type" binding:"required"`
	Params      map[string]interface{} `json:"params"`
	WindowDays  int                    `json:"window_days"`
}

// DecayResponse represents the response from DetectDecay
type DecayResponse = models.DecayResult

// SnapshotListResponse represents the response from ListSnapshots
type SnapshotListResponse = []models.SnapshotInfo

// IngestRecordRequest submits one observed repost directly over HTTP
type IngestRecordRequest = models.RepostRecord
