package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the pattern analysis service
type Metrics struct {
	AnalysisRuns        *prometheus.CounterVec
	AnalysisDuration    *prometheus.HistogramVec
	CacheEvents         *prometheus.CounterVec
	PatternApplications *prometheus.CounterVec
	ABTestEvaluations   *prometheus.CounterVec
	DecayChecks         *prometheus.CounterVec
	IngestEvents        *prometheus.CounterVec
}
