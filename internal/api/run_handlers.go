package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/scatter.report/internal/httputil"
	"github.com/banshee-data/scatter.report/internal/store"
)

// RunListResponse is the GET /api/runs body.
type RunListResponse struct {
	Runs  []store.Run `json:"runs"`
	Count int         `json:"count"`
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.runs == nil {
		httputil.ServiceUnavailable(w, "run store not configured")
		return
	}

	limit := 0 // store default
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.runs.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}

	httputil.WriteJSONOK(w, RunListResponse{Runs: runs, Count: len(runs)})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
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

	httputil.WriteJSONOK(w, stored)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
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

	err := s.runs.DeleteRun(id)
	if errors.Is(err, store.ErrNotFound) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to delete run: %v", err))
		return
	}

	httputil.WriteJSONOK(w, map[string]string{
		"status": "deleted",
		"run_id": id,
	})
}
