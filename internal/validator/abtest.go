package validator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/stats"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

// significanceZ is the two-tailed 95% threshold
const significanceZ = 1.96

// SetupABTest creates a 50/50 test where control is the unmodified content and
// test is the pattern-applied rendition. durationDays <= 0 falls back to the
// default duration.
func (v *Validator) SetupABTest(ctx context.Context, content string, toggles models.PatternToggles, scope string, durationDays int) (*models.ABTest, error) {
	if durationDays <= 0 {
		durationDays = DefaultTestDurationDays
	}

	applied, err := v.ApplyPatterns(ctx, content, toggles, scope)
	if err != nil {
		return nil, fmt.Errorf("apply patterns for test variant: %w", err)
	}

	now := time.Now().UTC()
	test := &models.ABTest{
		ID:    uuid.New().String(),
		Scope: scope,
		Control: models.ABVariant{
			Content: content,
			Weight:  0.5,
		},
		Test: models.ABVariant{
			Content:         applied.Content,
			PatternsApplied: applied.Applied,
			Weight:          0.5,
		},
		Status:    models.ABTestActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, durationDays),
	}

	if err := v.tests.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save ab test: %w", err)
	}

	v.logger.WithFields(logging.Fields{
		"test_id":  test.ID,
		"scope":    scope,
		"end_date": test.EndDate,
	}).Info("A/B test created")
	return test, nil
}

// TrackABTestPerformance accumulates a metrics delta into the named variant
// and recomputes its cumulative rates
func (v *Validator) TrackABTestPerformance(ctx context.Context, testID, variant string, delta models.ABMetrics) (*models.ABTest, error) {
	test, err := v.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	metrics, ok := test.MetricsFor(variant)
	if !ok {
		return nil, fmt.Errorf("unknown variant %q", variant)
	}

	metrics.Impressions += delta.Impressions
	metrics.Reposts += delta.Reposts
	metrics.Engagement += delta.Engagement
	metrics.Recalculate()

	if err := v.tests.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save ab test: %w", err)
	}
	return test, nil
}

// AnalyzeABTestResults runs the two-proportion z-test between the control and
// test repost rates. A winner is declared only when the difference is
// significant and the winning variant's rate is strictly higher.
func (v *Validator) AnalyzeABTestResults(ctx context.Context, testID string) (*models.ABTestResult, error) {
	test, err := v.tests.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	result := &models.ABTestResult{
		TestID:  test.ID,
		Control: test.ControlMetrics,
		Test:    test.TestMetrics,
	}

	if test.ControlMetrics.Impressions == 0 || test.TestMetrics.Impressions == 0 {
		result.Reason = "insufficient data: both variants need impressions before analysis"
		v.observeABEval(false)
		return result, nil
	}

	z := stats.TwoProportionZ(
		test.ControlMetrics.Reposts, test.ControlMetrics.Impressions,
		test.TestMetrics.Reposts, test.TestMetrics.Impressions,
	)
	result.ZScore = z
	result.Significant = math.Abs(z) > significanceZ
	result.Confidence = math.Min(100, math.Abs(z)*50)

	if test.ControlMetrics.RepostRate > 0 {
		result.Improvement = (test.TestMetrics.RepostRate - test.ControlMetrics.RepostRate) /
			test.ControlMetrics.RepostRate * 100
	}

	switch {
	case !result.Significant:
		result.Reason = "no statistically significant difference between variants"
	case test.TestMetrics.RepostRate > test.ControlMetrics.RepostRate:
		result.Winner = "test"
	case test.ControlMetrics.RepostRate > test.TestMetrics.RepostRate:
		result.Winner = "control"
	default:
		result.Reason = "significant z-score with equal repost rates"
	}

	// Declaring a winner concludes the test. Close it out so variant
	// traffic stops being tracked against a decided experiment.
	if result.Winner != "" && test.Status != models.ABTestCompleted {
		now := time.Now().UTC()
		test.Status = models.ABTestCompleted
		if test.EndDate.After(now) {
			test.EndDate = now
		}
		if err := v.tests.SaveTest(ctx, test); err != nil {
			return nil, fmt.Errorf("complete ab test: %w", err)
		}
		v.logger.WithFields(logging.Fields{
			"test_id": test.ID,
			"winner":  result.Winner,
		}).Info("A/B test completed")
	}

	v.observeABEval(result.Significant)
	return result, nil
}

func (v *Validator) observeABEval(significant bool) {
	if v.metrics.OnABEval != nil {
		v.metrics.OnABEval(significant)
	}
}
