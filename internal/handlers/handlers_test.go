package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/metrics"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/store"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

type stubAnalysis struct {
	snap        *models.AnalysisSnapshot
	invalidated []string
}

func (s *stubAnalysis) Analyze(context.Context, string, int) (*models.AnalysisSnapshot, error) {
	if s.snap == nil {
		return &models.AnalysisSnapshot{}, nil
	}
	return s.snap, nil
}

func (s *stubAnalysis) Invalidate(scope string) {
	s.invalidated = append(s.invalidated, scope)
}

type stubValidation struct {
	applyResult *models.AppliedPatternResult
	test        *models.ABTest
	result      *models.ABTestResult
	decay       *models.DecayResult
	notFound    bool
}

func (s *stubValidation) ApplyPatterns(context.Context, string, models.PatternToggles, string) (*models.AppliedPatternResult, error) {
	return s.applyResult, nil
}

func (s *stubValidation) SetupABTest(context.Context, string, models.PatternToggles, string, int) (*models.ABTest, error) {
	return s.test, nil
}

func (s *stubValidation) TrackABTestPerformance(context.Context, string, string, models.ABMetrics) (*models.ABTest, error) {
	if s.notFound {
		return nil, store.ErrTestNotFound
	}
	return s.test, nil
}

func (s *stubValidation) AnalyzeABTestResults(context.Context, string) (*models.ABTestResult, error) {
	if s.notFound {
		return nil, store.ErrTestNotFound
	}
	return s.result, nil
}

func (s *stubValidation) TrackPatternPerformance(_ context.Context, kind models.PatternKind, _ map[string]interface{}, _ map[string]float64) (string, error) {
	if !kind.Valid() {
		return "", assert.AnError
	}
	return "fp1234567890abcd", nil
}

func (s *stubValidation) DetectPatternDecay(context.Context, models.PatternKind, map[string]interface{}, int) (*models.DecayResult, error) {
	return s.decay, nil
}

type stubHistory struct {
	snap    *models.AnalysisSnapshot
	entries []models.SnapshotInfo
}

func (s *stubHistory) LatestSnapshot(context.Context, string) (*models.AnalysisSnapshot, error) {
	if s.snap == nil {
		return nil, store.ErrSnapshotNotFound
	}
	return s.snap, nil
}

func (s *stubHistory) ListSnapshots(context.Context, string, int) ([]models.SnapshotInfo, error) {
	return s.entries, nil
}

type stubIngestor struct {
	records []models.RepostRecord
}

func (s *stubIngestor) InsertRecord(_ context.Context, r models.RepostRecord) error {
	s.records = append(s.records, r)
	return nil
}

func setupRouter(a *stubAnalysis, v *stubValidation, h *stubHistory, i *stubIngestor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	Init(a, v, h, i, logging.NewLogger(), nil)
	router := gin.New()
	Register(router.Group("/api/v1"))
	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAnalysis(t *testing.T) {
	a := &stubAnalysis{snap: &models.AnalysisSnapshot{
		Scope:   "techguru",
		Summary: models.AnalysisSummary{TotalRecords: 7},
	}}
	router := setupRouter(a, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/analysis?scope=techguru&limit=50", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.AnalysisSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "techguru", snap.Scope)
	assert.Equal(t, 7, snap.Summary.TotalRecords)
}

func TestGetAnalysisRejectsBadLimit(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/analysis?limit=banana", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetScore(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/analysis/score", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var score models.PatternScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.Equal(t, "F", score.Grade)
}

func TestGetCharts(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/analysis/charts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var charts map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &charts))
	for _, section := range []string{"length", "tone", "hashtags", "hours", "days", "content_types"} {
		assert.Contains(t, charts, section)
	}
}

func TestApplyPatterns(t *testing.T) {
	v := &stubValidation{applyResult: &models.AppliedPatternResult{
		Content:         "rewritten",
		OriginalContent: "draft",
		Confidence:      80,
	}}
	router := setupRouter(&stubAnalysis{}, v, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/patterns/apply", map[string]interface{}{
		"content": "draft",
		"toggles": map[string]bool{"length": true},
		"scope":   "techguru",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.AppliedPatternResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "rewritten", result.Content)
	assert.InDelta(t, 80.0, result.Confidence, 1e-9)
}

func TestApplyPatternsRequiresContent(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/patterns/apply", map[string]interface{}{
		"scope": "techguru",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetupABTest(t *testing.T) {
	v := &stubValidation{test: &models.ABTest{ID: "test-1", Status: models.ABTestActive}}
	router := setupRouter(&stubAnalysis{}, v, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/abtests", map[string]interface{}{
		"content": "draft content",
		"scope":   "techguru",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var test models.ABTest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &test))
	assert.Equal(t, "test-1", test.ID)
}

func TestTrackABTestNotFound(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{notFound: true}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/abtests/missing/track", map[string]interface{}{
		"variant": "test",
		"delta":   map[string]int{"impressions": 10},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetABTestResults(t *testing.T) {
	v := &stubValidation{result: &models.ABTestResult{TestID: "test-1", Winner: "test", Significant: true}}
	router := setupRouter(&stubAnalysis{}, v, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/abtests/test-1/results", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ABTestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "test", result.Winner)
}

func TestTrackPerformance(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/patterns/performance", map[string]interface{}{
		"pattern_type": "length",
		"params":       map[string]interface{}{"category": "medium"},
		"performance":  map[string]float64{"repost_rate": 0.4},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fp1234567890abcd")
}

func TestDetectDecayRejectsUnknownKind(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/patterns/decay", map[string]interface{}{
		"pattern_type": "vibes",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectDecay(t *testing.T) {
	v := &stubValidation{decay: &models.DecayResult{
		Kind:  models.PatternTone,
		Trend: models.TrendStable,
	}}
	router := setupRouter(&stubAnalysis{}, v, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodPost, "/api/v1/patterns/decay", map[string]interface{}{
		"pattern_type": "tone",
		"window_days":  30,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.DecayResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.TrendStable, result.Trend)
	assert.False(t, result.DecayDetected)
}

func TestListSnapshotsEmptyIsArray(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/snapshots?scope=techguru", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetLatestSnapshotNotFound(t *testing.T) {
	router := setupRouter(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{})

	w := performJSON(router, http.MethodGet, "/api/v1/snapshots/latest?scope=ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngestRecordInvalidatesScope(t *testing.T) {
	a := &stubAnalysis{}
	i := &stubIngestor{}
	router := setupRouter(a, &stubValidation{}, &stubHistory{}, i)

	w := performJSON(router, http.MethodPost, "/api/v1/records", map[string]interface{}{
		"source_handle": "techguru",
		"original_text": "a fresh post worth analyzing",
		"repost_count":  12,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, i.records, 1)
	assert.NotEmpty(t, i.records[0].ID)
	assert.False(t, i.records[0].Timestamp.IsZero())
	assert.Equal(t, []string{"techguru"}, a.invalidated)
}

func TestIngestRecordRejectsEmptyText(t *testing.T) {
	a := &stubAnalysis{}
	i := &stubIngestor{}
	router := setupRouter(a, &stubValidation{}, &stubHistory{}, i)

	for _, text := range []string{"", "   \t\n"} {
		w := performJSON(router, http.MethodPost, "/api/v1/records", map[string]interface{}{
			"source_handle": "techguru",
			"original_text": text,
			"repost_count":  12,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	assert.Empty(t, i.records)
	assert.Empty(t, a.invalidated)
}

func TestAnalysisRunCountersCoverAllOperations(t *testing.T) {
	m := &metrics.Metrics{
		AnalysisRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "analysis_runs_total"},
			[]string{"operation", "status"}),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "analysis_duration_seconds"},
			[]string{"operation"}),
	}
	gin.SetMode(gin.TestMode)
	Init(&stubAnalysis{}, &stubValidation{}, &stubHistory{}, &stubIngestor{}, logging.NewLogger(), m)
	router := gin.New()
	Register(router.Group("/api/v1"))

	performJSON(router, http.MethodGet, "/api/v1/analysis", nil)
	performJSON(router, http.MethodGet, "/api/v1/analysis/score", nil)
	performJSON(router, http.MethodGet, "/api/v1/analysis/charts", nil)
	performJSON(router, http.MethodGet, "/api/v1/analysis/score?limit=banana", nil)

	for _, op := range []string{"analysis", "score", "charts"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRuns.WithLabelValues(op, "success")), op)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRuns.WithLabelValues("score", "error")))
}
