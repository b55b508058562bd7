// Package api serves clustering runs, stored results, and parameter sweeps
// over HTTP. Every endpoint speaks JSON except /api/chart, which returns a
// self-contained HTML page, and /metrics, which is the Prometheus handler.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/httputil"
	"github.com/banshee-data/scatter.report/internal/monitoring"
	"github.com/banshee-data/scatter.report/internal/store"
	"github.com/banshee-data/scatter.report/internal/sweep"
	"github.com/banshee-data/scatter.report/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server holds the collaborators behind the HTTP surface. db and sweeps are
// optional: without a database the persistence endpoints answer 503, and
// without a runner the background sweep endpoints do the same.
type Server struct {
	db       *store.DB
	runs     *store.RunStore
	sweeps   *sweep.Runner
	factory  sweep.ClustererFactory
	defaults dbscan.Params
	logf     func(format string, v ...interface{})
}

func NewServer(db *store.DB, sweeps *sweep.Runner) *Server {
	s := &Server{
		db:       db,
		sweeps:   sweeps,
		defaults: dbscan.DefaultParams(),
		// Forward through the package hook so SetLogger swaps apply to
		// servers built earlier.
		logf: func(format string, v ...interface{}) { monitoring.Logf(format, v...) },
	}
	if db != nil {
		s.runs = store.NewRunStore(db)
	}
	return s
}

// SetDefaultParams replaces the parameters used when a cluster request omits
// eps or min_pts. The daemon calls this after loading a tuning file.
func (s *Server) SetDefaultParams(params dbscan.Params) {
	s.defaults = params
}

// newClusterer builds the engine for one request. The factory hook exists so
// tests can substitute instrumented clusterers.
func (s *Server) newClusterer(params dbscan.Params) dbscan.Clusterer {
	if s.factory != nil {
		return s.factory(params)
	}
	return dbscan.NewDBSCANClusterer(params.Eps, params.MinPts)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cluster", s.handleCluster)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/get", s.getRun)
	mux.HandleFunc("/api/runs/delete", s.deleteRun)
	mux.HandleFunc("/api/chart", s.showChart)
	mux.HandleFunc("/api/sweep", s.runSweep)
	mux.HandleFunc("/api/sweep/start", s.startSweep)
	mux.HandleFunc("/api/sweep/status", s.sweepStatus)
	mux.HandleFunc("/api/sweep/stop", s.stopSweep)
	mux.HandleFunc("/api/health", s.showHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]string{
		"status":     "ok",
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}
