// Package testutil provides shared test helpers and the canonical point
// fixture used across the API, store and sweep tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// Points returns two tight three-point blobs and one far outlier. With eps
// between 0.3 and 0.5 and minPts 3 this clusters into two triples plus one
// noise point; minPts 4 pushes everything into noise.
func Points() []dbscan.Point {
	return []dbscan.Point{
		{ID: "a1", X: 0, Y: 0},
		{ID: "a2", X: 0.1, Y: 0},
		{ID: "a3", X: 0, Y: 0.1},
		{ID: "b1", X: 5, Y: 5},
		{ID: "b2", X: 5.1, Y: 5},
		{ID: "b3", X: 5, Y: 5.1},
		{ID: "far", X: 50, Y: 50},
	}
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request with no body.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewJSONRequest creates a test HTTP request carrying body as JSON.
func NewJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
