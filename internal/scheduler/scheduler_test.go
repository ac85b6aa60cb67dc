package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/kafka"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

type stubRunner struct {
	analyzed    []string
	invalidated []string
}

func (s *stubRunner) Analyze(_ context.Context, scope string, _ int) (*models.AnalysisSnapshot, error) {
	s.analyzed = append(s.analyzed, scope)
	return &models.AnalysisSnapshot{
		Scope:       scope,
		Summary:     models.AnalysisSummary{TotalRecords: 3},
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *stubRunner) Invalidate(scope string) {
	s.invalidated = append(s.invalidated, scope)
}

type stubScopes struct {
	scopes []string
}

func (s *stubScopes) ListScopes(context.Context) ([]string, error) {
	return s.scopes, nil
}

type stubPublisher struct {
	events []kafka.AnalysisCompletedEvent
}

func (s *stubPublisher) PublishAnalysisCompleted(event kafka.AnalysisCompletedEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestTriggerReanalysisCoversAllScopes(t *testing.T) {
	runner := &stubRunner{}
	publisher := &stubPublisher{}
	s := NewScheduler(runner, &stubScopes{scopes: []string{"techguru", "devrel"}}, publisher, IntervalDaily, logging.NewLogger())

	s.TriggerReanalysis()

	// Both handles plus the all-handles scope
	assert.Equal(t, []string{"techguru", "devrel", ""}, runner.analyzed)
	assert.Equal(t, []string{"techguru", "devrel", ""}, runner.invalidated)
	require.Len(t, publisher.events, 3)
	assert.Equal(t, "techguru", publisher.events[0].Scope)
	assert.Equal(t, 3, publisher.events[0].RecordCount)
	assert.NotEmpty(t, publisher.events[0].EventID)
}

func TestSchedulerWithoutPublisher(t *testing.T) {
	runner := &stubRunner{}
	s := NewScheduler(runner, &stubScopes{}, nil, 0, logging.NewLogger())

	s.TriggerReanalysis()

	assert.Equal(t, []string{""}, runner.analyzed)
	assert.Equal(t, IntervalDaily, s.interval)
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, IntervalDaily, ParseInterval("daily"))
	assert.Equal(t, IntervalWeekly, ParseInterval("weekly"))
	assert.Equal(t, IntervalMonthly, ParseInterval("monthly"))
	assert.Equal(t, IntervalDaily, ParseInterval(""))
}
