package validator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jairodriguez/Xelite-repost-engine-sub000/internal/stats"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/logging"
	"github.com/jairodriguez/Xelite-repost-engine-sub000/pkg/models"
)

const (
	// minDecaySamples below which decay detection reports insufficient data
	minDecaySamples = 10
	// slopeThreshold separates declining/improving from stable trends
	slopeThreshold = 0.01
	// decayScoreThreshold the composite score must exceed to flag decay
	decayScoreThreshold = 0.7
	// DefaultDecayWindowDays is the lookback when the caller passes zero
	DefaultDecayWindowDays = 30
)

// Fingerprint derives a stable identifier from a pattern's parameters. Maps
// marshal with sorted keys, so equal parameter sets always collide.
func Fingerprint(params map[string]interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", params))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// TrackPatternPerformance appends one observation of a pattern's real-world
// outcome, keyed by the fingerprint of its parameters. Samples land in the
// in-process window and, when a store is configured, in durable history.
func (v *Validator) TrackPatternPerformance(ctx context.Context, kind models.PatternKind, params map[string]interface{}, performance map[string]float64) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown pattern kind %q", kind)
	}

	fingerprint := Fingerprint(params)
	sample := models.PatternPerformanceSample{
		Kind:        kind,
		Fingerprint: fingerprint,
		RepostRate:  performance["repost_rate"],
		Performance: performance,
		Timestamp:   time.Now().UTC(),
	}

	v.rememberSample(sample)
	if v.perf != nil {
		if err := v.perf.AppendSample(ctx, sample); err != nil {
			return fingerprint, fmt.Errorf("append performance sample: %w", err)
		}
	}
	return fingerprint, nil
}

// DetectPatternDecay fits an OLS trend over the pattern's repost rates within
// the window. Fewer than 10 samples is an explicit insufficient-data result,
// never a decay claim.
func (v *Validator) DetectPatternDecay(ctx context.Context, kind models.PatternKind, params map[string]interface{}, windowDays int) (*models.DecayResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown pattern kind %q", kind)
	}
	if windowDays <= 0 {
		windowDays = DefaultDecayWindowDays
	}

	fingerprint := Fingerprint(params)
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	samples, err := v.windowSamples(ctx, kind, fingerprint, since)
	if err != nil {
		return nil, err
	}

	result := &models.DecayResult{
		Kind:        kind,
		Fingerprint: fingerprint,
		Samples:     len(samples),
	}

	if len(samples) < minDecaySamples {
		result.Trend = models.TrendInsufficient
		result.Reason = fmt.Sprintf("need at least %d samples in window, have %d", minDecaySamples, len(samples))
		v.observeDecayCheck(result.Trend)
		return result, nil
	}

	rates := make([]float64, len(samples))
	for i, s := range samples {
		rates[i] = s.RepostRate
	}

	slope := stats.OLSSlope(rates)
	result.Slope = slope
	switch {
	case slope < -slopeThreshold:
		result.Trend = models.TrendDeclining
	case slope > slopeThreshold:
		result.Trend = models.TrendImproving
	default:
		result.Trend = models.TrendStable
	}

	consistency := stats.ConsecutiveDecreasingFraction(rates)
	result.Confidence = math.Min(1, (math.Abs(slope)*10+consistency)/2)
	result.DecayDetected = result.Trend == models.TrendDeclining && result.Confidence > decayScoreThreshold

	if result.DecayDetected {
		v.logger.WithFields(logging.Fields{
			"pattern_type": kind,
			"fingerprint":  fingerprint,
			"slope":        slope,
			"confidence":   result.Confidence,
		}).Warn("Pattern decay detected")
	}
	v.observeDecayCheck(result.Trend)
	return result, nil
}

// windowSamples reads from the durable store when configured, otherwise from
// the in-process window. Samples are returned oldest first.
func (v *Validator) windowSamples(ctx context.Context, kind models.PatternKind, fingerprint string, since time.Time) ([]models.PatternPerformanceSample, error) {
	if v.perf != nil {
		samples, err := v.perf.SamplesSince(ctx, kind, fingerprint, since)
		if err != nil {
			return nil, fmt.Errorf("load performance samples: %w", err)
		}
		return samples, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	var out []models.PatternPerformanceSample
	for _, s := range v.recent[sampleKey(kind, fingerprint)] {
		if s.Timestamp.Before(since) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (v *Validator) rememberSample(sample models.PatternPerformanceSample) {
	key := sampleKey(sample.Kind, sample.Fingerprint)
	cutoff := time.Now().UTC().Add(-recentWindow)

	v.mu.Lock()
	defer v.mu.Unlock()
	kept := make([]models.PatternPerformanceSample, 0, len(v.recent[key])+1)
	for _, s := range v.recent[key] {
		if s.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, s)
	}
	v.recent[key] = append(kept, sample)
}

func sampleKey(kind models.PatternKind, fingerprint string) string {
	return string(kind) + ":" + fingerprint
}

func (v *Validator) observeDecayCheck(trend string) {
	if v.metrics.OnDecayCheck != nil {
		v.metrics.OnDecayCheck(trend)
	}
}
