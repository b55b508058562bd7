package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level so registration in the default registry happens exactly once,
// no matter how many servers a process builds.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scatter_http_requests_total",
			Help: "HTTP requests by path and status code",
		},
		[]string{"path", "code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scatter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"path"},
	)
	clusterRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scatter_cluster_runs_total",
			Help: "Total number of clustering runs served",
		},
	)
	pointsClusteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scatter_points_clustered_total",
			Help: "Total number of points pushed through the engine",
		},
	)
	clusterRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scatter_cluster_run_duration_seconds",
			Help:    "Engine run duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
	sweepCombosTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scatter_sweep_combos_total",
			Help: "Total number of sweep grid cells evaluated synchronously",
		},
	)
)

func observeClusterRun(points int, elapsed time.Duration) {
	clusterRunsTotal.Inc()
	pointsClusteredTotal.Add(float64(points))
	clusterRunDuration.Observe(elapsed.Seconds())
}

func observeSweep(combos int) {
	sweepCombosTotal.Add(float64(combos))
}

// MetricsMiddleware records a request counter and latency histogram per
// path. Stack it inside LoggingMiddleware so both see the final status code.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		httpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(lrw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
