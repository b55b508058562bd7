package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/banshee-data/scatter.report/internal/httputil"
	"github.com/banshee-data/scatter.report/internal/report"
	"github.com/banshee-data/scatter.report/internal/store"
)

// showChart renders a stored run as an interactive scatter page.
func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.runs == nil {
		httputil.ServiceUnavailable(w, "run store not configured")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.BadRequest(w, "'id' parameter is required")
		return
	}

	stored, err := s.runs.GetRun(id)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load run: %v", err))
		return
	}

	title := stored.Run.Source
	if title == "" {
		title = stored.Run.RunID
	}
	options := report.ChartOptions{
		Title: title,
		Subtitle: fmt.Sprintf("eps=%g minPts=%d | %d clusters, %d noise points",
			stored.Run.Eps, stored.Run.MinPts,
			stored.Run.ClusterCount, stored.Run.NoiseCount),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// The status line is already written once the renderer starts, so a
	// failure here can only be logged.
	if err := report.RenderChartHTML(w, stored.Result, options); err != nil {
		s.logf("failed to render chart for run %s: %v", id, err)
	}
}
