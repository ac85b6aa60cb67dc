// Package stats provides the small statistical toolkit shared by the pattern
// analyzer and validator: Pearson correlation, ordinary-least-squares trend
// fitting, and the two-proportion z-test used for A/B significance.
package stats

import "math"

// Pearson computes the Pearson correlation coefficient between x and y.
// Returns 0 when fewer than 2 points are available, when the slices differ in
// length, or when either series has zero variance. The result is bounded to
// [-1, 1] against floating point drift.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}

	r := cov / math.Sqrt(varX*varY)
	return math.Max(-1, math.Min(1, r))
}

// OLSSlope fits y = a + b*i over sample index i and returns the slope b.
// Returns 0 for fewer than 2 samples.
func OLSSlope(y []float64) float64 {
	n := len(y)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// TwoProportionZ computes the two-proportion z-score with pooled variance for
// successes/trials of two samples. Returns 0 when either sample has no trials
// or the pooled variance degenerates.
func TwoProportionZ(successA, trialsA, successB, trialsB int) float64 {
	if trialsA <= 0 || trialsB <= 0 {
		return 0
	}

	pA := float64(successA) / float64(trialsA)
	pB := float64(successB) / float64(trialsB)
	pooled := float64(successA+successB) / float64(trialsA+trialsB)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(trialsA) + 1/float64(trialsB)))
	if se == 0 {
		return 0
	}
	return (pB - pA) / se
}

// ConsecutiveDecreasingFraction returns the fraction of consecutive pairs in
// y that decrease. Used as the consistency term in decay scoring.
func ConsecutiveDecreasingFraction(y []float64) float64 {
	if len(y) < 2 {
		return 0
	}
	decreasing := 0
	for i := 1; i < len(y); i++ {
		if y[i] < y[i-1] {
			decreasing++
		}
	}
	return float64(decreasing) / float64(len(y)-1)
}
