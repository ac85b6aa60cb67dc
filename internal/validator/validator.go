// Package validator applies analyzed repost patterns to draft content and
// validates them in the field: A/B testing applied-versus-original content and
// detecting decay in a pattern's real-world performance.
package validator

import (
	"context"
	"sync"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// SnapshotSource yields analysis snapshots for a scope. Satisfied by the
// analyzer; tests inject fixed snapshots.
type SnapshotSource interface {
	Analyze(ctx context.Context, scope string, limit int) (*models.AnalysisSnapshot, error)
}

// TestStore persists A/B tests keyed by test id. Implementations return
// store.ErrTestNotFound for absent or expired ids.
type TestStore interface {
	SaveTest(ctx context.Context, test *models.ABTest) error
	GetTest(ctx context.Context, id string) (*models.ABTest, error)
}

// PerformanceStore holds the append-only pattern performance history
type PerformanceStore interface {
	AppendSample(ctx context.Context, sample models.PatternPerformanceSample) error
	SamplesSince(ctx context.Context, kind models.PatternKind, fingerprint string, since time.Time) ([]models.PatternPerformanceSample, error)
}

// Metrics hooks let the caller wire prometheus counters without the validator
// importing the metrics package
type Metrics struct {
	OnApply      func(kind models.PatternKind)
	OnABEval     func(significant bool)
	OnDecayCheck func(trend string)
}

// Validator applies, tests, and monitors repost patterns. The recent sample
// window doubles as the performance store when none is configured.
type Validator struct {
	snapshots SnapshotSource
	tests     TestStore
	perf      PerformanceStore
	logger    logging.Logger
	metrics   Metrics

	mu     sync.Mutex
	recent map[string][]models.PatternPerformanceSample
}

const (
	// DefaultTestDuration is the A/B test duration when the caller passes zero
	DefaultTestDurationDays = 7
	// recentWindow bounds the in-process sample cache
	recentWindow = 30 * 24 * time.Hour
)

func New(snapshots SnapshotSource, tests TestStore, perf PerformanceStore, logger logging.Logger) *Validator {
	return &Validator{
		snapshots: snapshots,
		tests:     tests,
		perf:      perf,
		logger:    logger,
		recent:    make(map[string][]models.PatternPerformanceSample),
	}
}

// WithMetrics attaches metric hooks and returns the validator for chaining
func (v *Validator) WithMetrics(m Metrics) *Validator {
	v.metrics = m
	return v
}
