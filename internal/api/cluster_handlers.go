package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/httputil"
	"github.com/banshee-data/scatter.report/internal/report"
	"github.com/banshee-data/scatter.report/internal/store"
)

// ClusterRequest is the POST /api/cluster body. Eps and MinPts are pointers
// so an explicit zero survives the trip; nil falls back to the engine
// defaults.
type ClusterRequest struct {
	Points  []dbscan.Point `json:"points"`
	Eps     *float64       `json:"eps,omitempty"`
	MinPts  *int           `json:"min_pts,omitempty"`
	Persist bool           `json:"persist,omitempty"`
	Source  string         `json:"source,omitempty"`
}

// ClusterResponse carries the engine output plus per-cluster shape metrics.
// RunID is set only when the request asked for persistence.
type ClusterResponse struct {
	Params     dbscan.Params           `json:"params"`
	Result     *dbscan.Result          `json:"result"`
	Metrics    []report.ClusterMetrics `json:"cluster_metrics"`
	DurationMs float64                 `json:"duration_ms"`
	RunID      string                  `json:"run_id,omitempty"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req ClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	params := s.defaults
	if req.Eps != nil {
		params.Eps = *req.Eps
	}
	if req.MinPts != nil {
		params.MinPts = *req.MinPts
	}

	start := time.Now()
	result, err := s.newClusterer(params).Cluster(req.Points)
	elapsed := time.Since(start)
	if err != nil {
		// The engine only fails on bad parameters or malformed points,
		// both of which came from the request.
		httputil.BadRequest(w, err.Error())
		return
	}

	observeClusterRun(len(req.Points), elapsed)

	resp := ClusterResponse{
		Params:     params,
		Result:     result,
		Metrics:    report.ComputeMetrics(result),
		DurationMs: float64(elapsed) / float64(time.Millisecond),
	}

	if !req.Persist {
		httputil.WriteJSONOK(w, resp)
		return
	}

	if s.runs == nil {
		httputil.ServiceUnavailable(w, "run store not configured")
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	run, err := s.runs.SaveRun(result, store.RunMeta{
		Source:   source,
		Params:   params,
		Duration: elapsed,
	})
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save run: %v", err))
		return
	}
	resp.RunID = run.RunID

	httputil.WriteJSON(w, http.StatusCreated, resp)
}
