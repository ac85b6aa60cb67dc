// Package scheduler drives periodic re-analysis: every interval it recomputes
// the snapshot for each known scope plus the all-handles scope, refreshing the
// persisted history and announcing completion on Kafka.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/kafka"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// AnalysisRunner recomputes a scope's snapshot, bypassing the cache through
// invalidation beforehand
type AnalysisRunner interface {
	Analyze(ctx context.Context, scope string, limit int) (*models.AnalysisSnapshot, error)
	Invalidate(scope string)
}

// ScopeLister enumerates the source handles worth re-analyzing
type ScopeLister interface {
	ListScopes(ctx context.Context) ([]string, error)
}

// EventPublisher announces completed analyses. Nil-able: the scheduler runs
// without Kafka in single-process deployments.
type EventPublisher interface {
	PublishAnalysisCompleted(event kafka.AnalysisCompletedEvent) error
}

// Intervals for the re-analysis cadence
const (
	IntervalDaily   = 24 * time.Hour
	IntervalWeekly  = 7 * 24 * time.Hour
	IntervalMonthly = 30 * 24 * time.Hour

	runTimeout = 5 * time.Minute
	// startupDelay lets the service finish wiring before the first run
	startupDelay = 10 * time.Second
)

// ParseInterval maps a cadence name to its duration, defaulting to daily
func ParseInterval(name string) time.Duration {
	switch name {
	case "weekly":
		return IntervalWeekly
	case "monthly":
		return IntervalMonthly
	default:
		return IntervalDaily
	}
}

// Scheduler handles the periodic re-analysis task
type Scheduler struct {
	logger    logging.Logger
	analysis  AnalysisRunner
	scopes    ScopeLister
	publisher EventPublisher
	interval  time.Duration
	ticker    *time.Ticker
	stopChan  chan bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(analysis AnalysisRunner, scopes ScopeLister, publisher EventPublisher, interval time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = IntervalDaily
	}
	return &Scheduler{
		logger:    logger,
		analysis:  analysis,
		scopes:    scopes,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan bool),
	}
}

// Start begins the scheduled re-analysis task
func (s *Scheduler) Start() {
	s.logger.WithFields(logging.Fields{
		"interval": s.interval,
	}).Info("Starting re-analysis scheduler")

	s.ticker = time.NewTicker(s.interval)
	go s.run()

	// Run an initial pass shortly after startup
	go func() {
		time.Sleep(startupDelay)
		s.logger.Info("Running initial re-analysis")
		s.runOnce()
	}()
}

// Stop stops the scheduled task
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping re-analysis scheduler")
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

func (s *Scheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.logger.Info("Running scheduled re-analysis")
			s.runOnce()
		case <-s.stopChan:
			s.logger.Info("Stopping re-analysis task runner")
			return
		}
	}
}

// TriggerReanalysis manually runs one full re-analysis pass
func (s *Scheduler) TriggerReanalysis() {
	s.logger.Info("Manually triggering re-analysis")
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	scopes, err := s.scopes.ListScopes(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list scopes for re-analysis")
		return
	}
	// The all-handles scope aggregates every record and is always refreshed
	scopes = append(scopes, "")

	for _, scope := range scopes {
		s.reanalyzeScope(ctx, scope)
	}
}

func (s *Scheduler) reanalyzeScope(ctx context.Context, scope string) {
	s.analysis.Invalidate(scope)

	snap, err := s.analysis.Analyze(ctx, scope, 0)
	if err != nil {
		s.logger.WithFields(logging.Fields{
			"scope": scope,
			"error": err,
		}).Error("Scheduled re-analysis failed for scope")
		return
	}

	s.logger.WithFields(logging.Fields{
		"scope":   scope,
		"records": snap.Summary.TotalRecords,
	}).Info("Scheduled re-analysis completed")

	if s.publisher == nil {
		return
	}
	event := kafka.AnalysisCompletedEvent{
		EventID:     uuid.New().String(),
		Scope:       scope,
		RecordCount: snap.Summary.TotalRecords,
		GeneratedAt: snap.GeneratedAt,
	}
	if err := s.publisher.PublishAnalysisCompleted(event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish analysis-completed event")
	}
}
