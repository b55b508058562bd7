package testutil

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"
)

// TestPoints pins the fixture geometry the consuming tests rely on: blob
// members sit within 0.3 of a neighbour, the blobs are far apart, and the
// outlier is far from everything.
func TestPoints(t *testing.T) {
	t.Parallel()

	pts := Points()
	if len(pts) != 7 {
		t.Fatalf("len(Points()) = %d, want 7", len(pts))
	}

	seen := make(map[string]bool)
	for _, p := range pts {
		if seen[p.ID] {
			t.Errorf("duplicate point ID %q", p.ID)
		}
		seen[p.ID] = true
	}

	dist := func(a, b int) float64 {
		return math.Hypot(pts[a].X-pts[b].X, pts[a].Y-pts[b].Y)
	}
	if d := dist(0, 1); d > 0.3 {
		t.Errorf("a1-a2 distance = %f, want <= 0.3", d)
	}
	if d := dist(0, 3); d < 5 {
		t.Errorf("blob separation = %f, want >= 5", d)
	}
	if d := dist(3, 6); d < 10 {
		t.Errorf("outlier distance = %f, want >= 10", d)
	}
}

func TestAssertHelpers(t *testing.T) {
	t.Parallel()

	// Passing paths only. The failing paths call t.Errorf/t.Fatalf, which
	// cannot be observed without a fake testing.T.
	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertNoError(t, nil)
	AssertError(t, json.Unmarshal([]byte("{"), &struct{}{}))
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodGet, "/api/runs")
	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/api/runs" {
		t.Errorf("path = %s, want /api/runs", req.URL.Path)
	}
}

func TestNewJSONRequest(t *testing.T) {
	t.Parallel()

	body := map[string]int{"min_pts": 3}
	req := NewJSONRequest(t, http.MethodPost, "/api/cluster", body)

	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s, want application/json", ct)
	}

	var decoded map[string]int
	if err := json.NewDecoder(req.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	if decoded["min_pts"] != 3 {
		t.Errorf("min_pts = %d, want 3", decoded["min_pts"])
	}
}

func TestNewTestRecorder(t *testing.T) {
	t.Parallel()

	rec := NewTestRecorder()
	rec.WriteHeader(http.StatusTeapot)
	AssertStatusCode(t, rec.Code, http.StatusTeapot)
}
