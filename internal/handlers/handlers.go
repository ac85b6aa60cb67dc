// Package handlers exposes the pattern analysis operations over HTTP: analysis
// snapshots, pattern application, scoring, chart data, A/B test lifecycle, and
// performance/decay tracking.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/metrics"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/store"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/visualizer"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/api/resonator"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// AnalysisService is the analyzer surface the handlers call
type AnalysisService interface {
	Analyze(ctx context.Context, scope string, limit int) (*models.AnalysisSnapshot, error)
	Invalidate(scope string)
}

// ValidationService is the validator surface the handlers call
type ValidationService interface {
	ApplyPatterns(ctx context.Context, content string, toggles models.PatternToggles, scope string) (*models.AppliedPatternResult, error)
	SetupABTest(ctx context.Context, content string, toggles models.PatternToggles, scope string, durationDays int) (*models.ABTest, error)
	TrackABTestPerformance(ctx context.Context, testID, variant string, delta models.ABMetrics) (*models.ABTest, error)
	AnalyzeABTestResults(ctx context.Context, testID string) (*models.ABTestResult, error)
	TrackPatternPerformance(ctx context.Context, kind models.PatternKind, params map[string]interface{}, performance map[string]float64) (string, error)
	DetectPatternDecay(ctx context.Context, kind models.PatternKind, params map[string]interface{}, windowDays int) (*models.DecayResult, error)
}

// SnapshotHistory reads persisted snapshot history
type SnapshotHistory interface {
	LatestSnapshot(ctx context.Context, scope string) (*models.AnalysisSnapshot, error)
	ListSnapshots(ctx context.Context, scope string, limit int) ([]models.SnapshotInfo, error)
}

// RecordIngestor accepts directly-submitted repost records
type RecordIngestor interface {
	InsertRecord(ctx context.Context, r models.RepostRecord) error
}

var (
	analysis       AnalysisService
	validation     ValidationService
	history        SnapshotHistory
	ingestor       RecordIngestor
	logger         logging.Logger
	serviceMetrics *metrics.Metrics
)

// Init initializes the handlers package with its services and metrics
func Init(a AnalysisService, v ValidationService, h SnapshotHistory, r RecordIngestor, log logging.Logger, m *metrics.Metrics) {
	analysis = a
	validation = v
	history = h
	ingestor = r
	logger = log
	serviceMetrics = m
}

// Register mounts every operation on the router group
func Register(rg *gin.RouterGroup) {
	rg.GET("/analysis", GetAnalysis)
	rg.GET("/analysis/score", GetScore)
	rg.GET("/analysis/charts", GetCharts)
	rg.POST("/patterns/apply", ApplyPatterns)
	rg.POST("/patterns/performance", TrackPerformance)
	rg.POST("/patterns/decay", DetectDecay)
	rg.POST("/abtests", SetupABTest)
	rg.POST("/abtests/:id/track", TrackABTest)
	rg.GET("/abtests/:id/results", GetABTestResults)
	rg.GET("/snapshots", ListSnapshots)
	rg.GET("/snapshots/latest", GetLatestSnapshot)
	rg.POST("/records", IngestRecord)
}

func scopeParams(c *gin.Context) (string, int, bool) {
	scope := c.Query("scope")
	limitStr := c.DefaultQuery("limit", "0")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid limit parameter"})
		return "", 0, false
	}
	return scope, limit, true
}

// GetAnalysis returns the (possibly cached) analysis snapshot for a scope
func GetAnalysis(c *gin.Context) {
	start := time.Now()
	defer observeDuration("analysis", start)

	scope, limit, ok := scopeParams(c)
	if !ok {
		countRun("analysis", "error")
		return
	}

	snap, err := analysis.Analyze(c.Request.Context(), scope, limit)
	if err != nil {
		countRun("analysis", "error")
		logger.WithFields(logging.Fields{
			"scope": scope,
			"error": err,
		}).Error("Failed to run analysis")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to run analysis"})
		return
	}

	countRun("analysis", "success")
	c.JSON(http.StatusOK, snap)
}

// GetScore grades the scope's current snapshot
func GetScore(c *gin.Context) {
	start := time.Now()
	defer observeDuration("score", start)

	scope, limit, ok := scopeParams(c)
	if !ok {
		countRun("score", "error")
		return
	}

	snap, err := analysis.Analyze(c.Request.Context(), scope, limit)
	if err != nil {
		countRun("score", "error")
		logger.WithError(err).Error("Failed to run analysis for scoring")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to score patterns"})
		return
	}

	countRun("score", "success")
	c.JSON(http.StatusOK, visualizer.Score(snap))
}

// GetCharts returns chart-ready label/series data for every snapshot section
func GetCharts(c *gin.Context) {
	start := time.Now()
	defer observeDuration("charts", start)

	scope, limit, ok := scopeParams(c)
	if !ok {
		countRun("charts", "error")
		return
	}

	snap, err := analysis.Analyze(c.Request.Context(), scope, limit)
	if err != nil {
		countRun("charts", "error")
		logger.WithError(err).Error("Failed to run analysis for charts")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to build chart data"})
		return
	}

	countRun("charts", "success")
	c.JSON(http.StatusOK, gin.H{
		"length":        visualizer.LengthChartData(snap),
		"tone":          visualizer.ToneChartData(snap),
		"hashtags":      visualizer.FormatChartData(snap, "hashtags"),
		"emojis":        visualizer.FormatChartData(snap, "emojis"),
		"urls":          visualizer.FormatChartData(snap, "urls"),
		"mentions":      visualizer.FormatChartData(snap, "mentions"),
		"hours":         visualizer.HourChartData(snap),
		"days":          visualizer.DayChartData(snap),
		"content_types": visualizer.ContentTypeChartData(snap),
	})
}

// ApplyPatterns rewrites draft content toward the scope's patterns
func ApplyPatterns(c *gin.Context) {
	var req resonator.ApplyPatternsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	result, err := validation.ApplyPatterns(c.Request.Context(), req.Content, req.Toggles, req.Scope)
	if err != nil {
		logger.WithFields(logging.Fields{
			"scope": req.Scope,
			"error": err,
		}).Error("Failed to apply patterns")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to apply patterns"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetupABTest creates a control/test pair from draft content
func SetupABTest(c *gin.Context) {
	var req resonator.SetupABTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	test, err := validation.SetupABTest(c.Request.Context(), req.Content, req.Toggles, req.Scope, req.DurationDays)
	if err != nil {
		logger.WithError(err).Error("Failed to create A/B test")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to create A/B test"})
		return
	}

	c.JSON(http.StatusCreated, test)
}

// TrackABTest accumulates a metrics delta into one variant
func TrackABTest(c *gin.Context) {
	var req resonator.TrackABTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	test, err := validation.TrackABTestPerformance(c.Request.Context(), c.Param("id"), req.Variant, req.Delta)
	if errors.Is(err, store.ErrTestNotFound) {
		c.JSON(http.StatusNotFound, resonator.ErrorResponse{Error: "A/B test not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to track A/B test performance")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to track A/B test performance"})
		return
	}

	c.JSON(http.StatusOK, test)
}

// GetABTestResults runs the significance analysis for a test
func GetABTestResults(c *gin.Context) {
	result, err := validation.AnalyzeABTestResults(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrTestNotFound) {
		c.JSON(http.StatusNotFound, resonator.ErrorResponse{Error: "A/B test not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to analyze A/B test")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to analyze A/B test"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// TrackPerformance appends one pattern performance observation
func TrackPerformance(c *gin.Context) {
	var req resonator.TrackPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	fingerprint, err := validation.TrackPatternPerformance(c.Request.Context(), req.PatternType, req.Params, req.Performance)
	if err != nil {
		if !req.PatternType.Valid() {
			c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Unknown pattern type"})
			return
		}
		logger.WithError(err).Error("Failed to track pattern performance")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to track pattern performance"})
		return
	}

	c.JSON(http.StatusOK, resonator.TrackPerformanceResponse{Fingerprint: fingerprint})
}

// DetectDecay runs decay detection over a pattern's recent samples
func DetectDecay(c *gin.Context) {
	var req resonator.DecayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}
	if !req.PatternType.Valid() {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Unknown pattern type"})
		return
	}

	result, err := validation.DetectPatternDecay(c.Request.Context(), req.PatternType, req.Params, req.WindowDays)
	if err != nil {
		logger.WithError(err).Error("Failed to detect pattern decay")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to detect pattern decay"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListSnapshots returns snapshot history for a scope, newest first
func ListSnapshots(c *gin.Context) {
	scope := c.Query("scope")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid limit parameter"})
		return
	}

	entries, err := history.ListSnapshots(c.Request.Context(), scope, limit)
	if err != nil {
		logger.WithError(err).Error("Failed to list snapshots")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to list snapshots"})
		return
	}
	if entries == nil {
		entries = []models.SnapshotInfo{}
	}

	c.JSON(http.StatusOK, entries)
}

// GetLatestSnapshot returns the most recent persisted snapshot for a scope
func GetLatestSnapshot(c *gin.Context) {
	snap, err := history.LatestSnapshot(c.Request.Context(), c.Query("scope"))
	if errors.Is(err, store.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, resonator.ErrorResponse{Error: "No snapshot for scope"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to load latest snapshot")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to load latest snapshot"})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// IngestRecord accepts one observed repost and invalidates the scope's cache
func IngestRecord(c *gin.Context) {
	var record resonator.IngestRecordRequest
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(record.OriginalText) == "" {
		countIngest("http", "error")
		c.JSON(http.StatusBadRequest, resonator.ErrorResponse{Error: "original_text must not be empty"})
		return
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	if err := ingestor.InsertRecord(c.Request.Context(), record); err != nil {
		countIngest("http", "error")
		logger.WithFields(logging.Fields{
			"source_handle": record.SourceHandle,
			"error":         err,
		}).Error("Failed to ingest record")
		c.JSON(http.StatusInternalServerError, resonator.ErrorResponse{Error: "Failed to ingest record"})
		return
	}

	analysis.Invalidate(record.SourceHandle)
	countIngest("http", "success")
	c.JSON(http.StatusCreated, record)
}

func countRun(operation, status string) {
	if serviceMetrics != nil {
		serviceMetrics.AnalysisRuns.WithLabelValues(operation, status).Inc()
	}
}

func countIngest(source, status string) {
	if serviceMetrics != nil {
		serviceMetrics.IngestEvents.WithLabelValues(source, status).Inc()
	}
}

func observeDuration(operation string, start time.Time) {
	if serviceMetrics != nil {
		serviceMetrics.AnalysisDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
