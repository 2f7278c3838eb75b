// Package metrics exposes Prometheus metrics for the HTTP surface and the
// import pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hrimport"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "imports",
			Name:      "total",
			Help:      "Total number of import submissions by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RowsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "imports",
			Name:      "rows_parsed_total",
			Help:      "Total number of data rows parsed from uploaded files",
		},
	)

	RecordsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "imports",
			Name:      "records_total",
			Help:      "Total number of records submitted to the HR backend by mode and result",
		},
		[]string{"mode", "result"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "imports",
			Name:      "submission_duration_seconds",
			Help:      "Time spent submitting an import batch to the HR backend",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)
)

// ObserveOutcome records the aggregate result of one import submission.
func ObserveOutcome(mode, outcome string, successCount, failureCount int, durationSeconds float64) {
	ImportsTotal.WithLabelValues(mode, outcome).Inc()
	SubmissionDuration.WithLabelValues(mode).Observe(durationSeconds)
	if successCount > 0 {
		RecordsSubmitted.WithLabelValues(mode, "success").Add(float64(successCount))
	}
	if failureCount > 0 {
		RecordsSubmitted.WithLabelValues(mode, "failure").Add(float64(failureCount))
	}
}
