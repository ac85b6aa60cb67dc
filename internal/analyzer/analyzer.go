// Package analyzer computes aggregate statistics and correlations over a
// window of repost records and derives content recommendations from them.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/cache"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// RecordSource reads repost records, newest first. Scope filters by source
// handle; an empty scope selects all handles.
type RecordSource interface {
	GetRecords(ctx context.Context, scope string, limit int) ([]models.RepostRecord, error)
}

// SnapshotWriter persists completed snapshots for historical retrieval
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, snap *models.AnalysisSnapshot) error
}

// Metrics hooks the analyzer reports into; any field may be nil
type Metrics struct {
	OnAnalysis func(scope string, status string)
	OnDuration func(scope string, d time.Duration)
}

// Analyzer computes analysis snapshots. Results are cached in-process keyed
// by (scope, limit) until invalidated by a new-data event.
type Analyzer struct {
	source    RecordSource
	snapshots SnapshotWriter
	cache     *cache.Cache
	logger    logging.Logger
	defs      Definitions
	metrics   Metrics

	stopwords map[string]struct{}
}

// DefaultRecordLimit bounds an analysis window when the caller does not
const DefaultRecordLimit = 100

// New creates an Analyzer. The snapshot writer may be nil when persistence
// is not wanted (tests); the cache may be nil to disable caching.
func New(source RecordSource, snapshots SnapshotWriter, c *cache.Cache, logger logging.Logger, defs Definitions) *Analyzer {
	return &Analyzer{
		source:    source,
		snapshots: snapshots,
		cache:     c,
		logger:    logger,
		defs:      defs,
		stopwords: defs.stopwordSet(),
	}
}

// WithMetrics attaches metric hooks and returns the analyzer
func (a *Analyzer) WithMetrics(m Metrics) *Analyzer {
	a.metrics = m
	return a
}

func snapshotKey(scope string, limit int) string {
	return fmt.Sprintf("snapshot:%s:%d", scope, limit)
}

// Analyze computes (or returns a cached) snapshot for the scope over the
// most recent limit records. Zero matching records yields an empty snapshot,
// not an error.
func (a *Analyzer) Analyze(ctx context.Context, scope string, limit int) (*models.AnalysisSnapshot, error) {
	if limit <= 0 {
		limit = DefaultRecordLimit
	}

	if a.cache == nil {
		return a.compute(ctx, scope, limit)
	}

	val, ok, err := a.cache.Get(ctx, snapshotKey(scope, limit), func(ctx context.Context, _ string) (interface{}, bool, error) {
		snap, err := a.compute(ctx, scope, limit)
		if err != nil {
			return nil, false, err
		}
		return snap, true, nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("analysis for scope %q unavailable", scope)
	}
	return val.(*models.AnalysisSnapshot), nil
}

// Invalidate drops all cached snapshots for the scope. The all-handles scope
// is always invalidated too since it aggregates every handle's records.
func (a *Analyzer) Invalidate(scope string) {
	if a.cache == nil {
		return
	}
	removed := a.cache.InvalidatePrefix(fmt.Sprintf("snapshot:%s:", scope))
	if scope != "" {
		removed += a.cache.InvalidatePrefix("snapshot::")
	}
	if removed > 0 {
		a.logger.WithFields(logging.Fields{
			"scope":   scope,
			"entries": removed,
		}).Debug("Invalidated cached snapshots")
	}
}

func (a *Analyzer) compute(ctx context.Context, scope string, limit int) (*models.AnalysisSnapshot, error) {
	start := time.Now()
	defer func() {
		if a.metrics.OnDuration != nil {
			a.metrics.OnDuration(scope, time.Since(start))
		}
	}()

	records, err := a.source.GetRecords(ctx, scope, limit)
	if err != nil {
		if a.metrics.OnAnalysis != nil {
			a.metrics.OnAnalysis(scope, "error")
		}
		return nil, fmt.Errorf("fetch records for scope %q: %w", scope, err)
	}

	for i := range records {
		records[i].Normalize()
	}

	snap := a.build(scope, limit, records)

	if len(records) == 0 {
		a.logger.WithField("scope", scope).Warn("No repost records found for analysis")
		if a.metrics.OnAnalysis != nil {
			a.metrics.OnAnalysis(scope, "empty")
		}
		return snap, nil
	}

	if a.snapshots != nil {
		if err := a.snapshots.SaveSnapshot(ctx, snap); err != nil {
			// Persistence is best-effort; the computed snapshot is still valid.
			a.logger.WithError(err).WithField("scope", scope).Error("Failed to persist analysis snapshot")
		}
	}

	if a.metrics.OnAnalysis != nil {
		a.metrics.OnAnalysis(scope, "ok")
	}
	return snap, nil
}

func (a *Analyzer) build(scope string, limit int, records []models.RepostRecord) *models.AnalysisSnapshot {
	snap := &models.AnalysisSnapshot{
		Scope:                 scope,
		RecordLimit:           limit,
		GeneratedAt:           time.Now().UTC(),
		Summary:               summarize(records),
		LengthPatterns:        a.lengthPatterns(records),
		TonePatterns:          a.tonePatterns(records),
		FormatPatterns:        a.formatPatterns(records),
		EngagementCorrelation: a.engagementCorrelation(records),
		TimePatterns:          a.timePatterns(records),
		ContentPatterns:       a.contentPatterns(records),
	}
	snap.Recommendations = recommendations(snap)
	return snap
}

func summarize(records []models.RepostRecord) models.AnalysisSummary {
	summary := models.AnalysisSummary{TotalRecords: len(records)}
	if len(records) == 0 {
		return summary
	}

	handles := make(map[string]struct{})
	oldest := records[0].Timestamp
	newest := records[0].Timestamp
	for _, r := range records {
		summary.TotalEngagement += r.Engagement()
		handles[r.SourceHandle] = struct{}{}
		if r.Timestamp.Before(oldest) {
			oldest = r.Timestamp
		}
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	summary.AvgEngagement = float64(summary.TotalEngagement) / float64(len(records))
	summary.UniqueHandles = len(handles)
	summary.OldestRecord = &oldest
	summary.NewestRecord = &newest
	return summary
}
