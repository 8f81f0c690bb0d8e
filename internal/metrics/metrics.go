// Package metrics holds the Prometheus collectors of the analysis service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeConverged = "converged"
	OutcomeCapped    = "capped"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

var (
	estimationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasch_estimation_runs_total",
		Help: "Estimation runs by outcome",
	}, []string{"outcome"})

	estimationIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasch_estimation_iterations",
		Help:    "JMLE iterations per run",
		Buckets: []float64{1, 5, 10, 20, 35, 50, 75, 100},
	})

	estimationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasch_estimation_duration_seconds",
		Help:    "Wall time of estimation plus fit analysis",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	matrixCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasch_matrix_cells",
		Help:    "Persons x items per analysed matrix",
		Buckets: prometheus.ExponentialBuckets(10, 10, 7),
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rasch_analysis_queue_depth",
		Help: "Analysis jobs waiting for a worker",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasch_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})
)

// ObserveEstimation records one finished run.
func ObserveEstimation(outcome string, iterations, cells int, elapsed time.Duration) {
	estimationRuns.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFailed || outcome == OutcomeEmpty {
		return
	}
	estimationIterations.Observe(float64(iterations))
	estimationDuration.Observe(elapsed.Seconds())
	matrixCells.Observe(float64(cells))
}

func QueueDepthInc() { queueDepth.Inc() }
func QueueDepthDec() { queueDepth.Dec() }

func ObserveHTTP(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
