package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/httputil"
	"github.com/banshee-data/scatter.report/internal/store"
	"github.com/banshee-data/scatter.report/internal/sweep"
)

// maxSyncCombos bounds the synchronous /api/sweep grid. Larger explorations
// belong on the background runner, which enforces its own cap.
const maxSyncCombos = 1000

// SweepStartRequest is the body for POST /api/sweep and /api/sweep/start.
// The dataset comes from an inline point list or from a stored run; inline
// points win when both are present. The embedded SweepRequest contributes the
// parameter grid fields (eps_values, min_pts_spec, ...).
type SweepStartRequest struct {
	Points []dbscan.Point `json:"points,omitempty"`
	RunID  string         `json:"run_id,omitempty"`
	sweep.SweepRequest
}

// SweepResponse is the synchronous sweep result: every grid cell in order
// plus the pick with the fewest noise points.
type SweepResponse struct {
	Results []sweep.ComboResult `json:"results"`
	Best    *sweep.ComboResult  `json:"best,omitempty"`
}

var (
	errDatasetRequired = errors.New("request needs points or run_id")
	errNoStore         = errors.New("run store not configured")
)

// sweepDataset resolves the dataset for a sweep request.
func (s *Server) sweepDataset(req SweepStartRequest) ([]dbscan.Point, error) {
	if len(req.Points) > 0 {
		return req.Points, nil
	}
	if req.RunID == "" {
		return nil, errDatasetRequired
	}
	if s.runs == nil {
		return nil, errNoStore
	}
	stored, err := s.runs.GetRun(req.RunID)
	if err != nil {
		return nil, err
	}
	return flattenResult(stored.Result), nil
}

// flattenResult concatenates cluster members and noise into a single dataset.
// Re-sweeping this order can assign different cluster IDs than the original
// ingest order, but membership is unaffected.
func flattenResult(result *dbscan.Result) []dbscan.Point {
	var points []dbscan.Point
	for _, c := range result.Clusters {
		points = append(points, c.Points...)
	}
	return append(points, result.Noise...)
}

func writeDatasetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errDatasetRequired):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, errNoStore):
		httputil.ServiceUnavailable(w, err.Error())
	case errors.Is(err, store.ErrNotFound):
		httputil.NotFound(w, "run not found")
	default:
		httputil.InternalServerError(w, fmt.Sprintf("failed to load dataset: %v", err))
	}
}

// runSweep evaluates a parameter grid synchronously and returns every result.
// GET sweeps a stored run selected by query parameters; POST accepts an
// inline dataset in the body.
func (s *Server) runSweep(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.runSweepStored(w, r)
	case http.MethodPost:
		s.runSweepInline(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) runSweepStored(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	id := query.Get("id")
	if id == "" {
		httputil.BadRequest(w, "'id' parameter is required")
		return
	}

	req := sweep.SweepRequest{
		EpsSpec:    query.Get("eps"),
		MinPtsSpec: query.Get("min_pts"),
	}
	if mc := query.Get("min_clusters"); mc != "" {
		parsed, err := strconv.Atoi(mc)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'min_clusters' parameter")
			return
		}
		req.MinClusters = parsed
	}

	points, err := s.sweepDataset(SweepStartRequest{RunID: id})
	if err != nil {
		writeDatasetError(w, err)
		return
	}

	s.evaluateGrid(r.Context(), w, points, req)
}

func (s *Server) runSweepInline(w http.ResponseWriter, r *http.Request) {
	var req SweepStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid request: "+err.Error())
		return
	}

	points, err := s.sweepDataset(req)
	if err != nil {
		writeDatasetError(w, err)
		return
	}

	s.evaluateGrid(r.Context(), w, points, req.SweepRequest)
}

func (s *Server) evaluateGrid(ctx context.Context, w http.ResponseWriter, points []dbscan.Point, req sweep.SweepRequest) {
	epsCombos, minPtsCombos, err := sweep.Combinations(req)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if total := len(epsCombos) * len(minPtsCombos); total > maxSyncCombos {
		httputil.BadRequest(w, fmt.Sprintf("parameter range too large: would generate %d combinations (max %d)", total, maxSyncCombos))
		return
	}

	results, err := sweep.RunGrid(ctx, points, epsCombos, minPtsCombos)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	observeSweep(len(results))

	httputil.WriteJSONOK(w, SweepResponse{
		Results: results,
		Best:    sweep.Summarize(results, req.MinClusters),
	})
}

// startSweep launches a background sweep through the runner.
func (s *Server) startSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.sweeps == nil {
		httputil.ServiceUnavailable(w, "sweep runner not configured")
		return
	}

	var req SweepStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid request: "+err.Error())
		return
	}

	points, err := s.sweepDataset(req)
	if err != nil {
		writeDatasetError(w, err)
		return
	}

	// The sweep must outlive this request, so it runs on the background
	// context rather than r.Context(), which is cancelled as soon as the
	// handler returns.
	if err := s.sweeps.Start(context.Background(), points, req.SweepRequest); err != nil {
		httputil.Conflict(w, err.Error())
		return
	}

	httputil.WriteJSONOK(w, map[string]string{"status": "started"})
}

// sweepStatus reports progress and results of the current or last sweep.
func (s *Server) sweepStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.sweeps == nil {
		httputil.ServiceUnavailable(w, "sweep runner not configured")
		return
	}

	httputil.WriteJSONOK(w, s.sweeps.GetSweepState())
}

// stopSweep cancels a running sweep. Stopping an idle runner is a no-op.
func (s *Server) stopSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.sweeps == nil {
		httputil.ServiceUnavailable(w, "sweep runner not configured")
		return
	}

	s.sweeps.Stop()
	httputil.WriteJSONOK(w, map[string]string{"status": "stopped"})
}
