package store

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// loopbackRequest creates an httptest request with RemoteAddr set to loopback
// so that tsweb.AllowDebugAccess returns true.
func loopbackRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func TestAttachAdminRoutes_RoutesRegistered(t *testing.T) {
	db, _ := newTestStore(t)

	mux := http.NewServeMux()
	if err := db.AttachAdminRoutes(mux); err != nil {
		t.Fatalf("AttachAdminRoutes failed: %v", err)
	}

	for _, target := range []string{"/debug/db-stats", "/debug/backup", "/debug/tailsql/"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		// Non-loopback requests may be refused by the debug handler, but
		// the route must exist.
		if w.Code == http.StatusNotFound {
			t.Errorf("Route %s should be registered, got 404", target)
		}
	}
}

func TestAdminRoutes_DBStats_HandlerBody(t *testing.T) {
	db, rs := newTestStore(t)

	// Insert some data so stats have content
	if _, err := rs.SaveRun(sampleResult(), RunMeta{
		Source: "admin",
		Params: dbscan.Params{Eps: 0.3, MinPts: 3},
	}); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	mux := http.NewServeMux()
	if err := db.AttachAdminRoutes(mux); err != nil {
		t.Fatalf("AttachAdminRoutes failed: %v", err)
	}

	req := loopbackRequest(http.MethodGet, "/debug/db-stats")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	// Verify JSON response
	var stats DatabaseStats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if len(stats.Tables) == 0 {
		t.Error("expected at least one table in stats")
	}
}

func TestAdminRoutes_Backup_HandlerBody(t *testing.T) {
	db, rs := newTestStore(t)

	// Insert a row so the backup is non-trivial
	if _, err := rs.SaveRun(sampleResult(), RunMeta{
		Source: "backup",
		Params: dbscan.Params{Eps: 0.3, MinPts: 3},
	}); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	mux := http.NewServeMux()
	if err := db.AttachAdminRoutes(mux); err != nil {
		t.Fatalf("AttachAdminRoutes failed: %v", err)
	}

	req := loopbackRequest(http.MethodGet, "/debug/backup")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Verify gzip response
	ct := w.Header().Get("Content-Type")
	if ct != "application/octet-stream" {
		t.Errorf("expected Content-Type application/octet-stream, got %q", ct)
	}
	ce := w.Header().Get("Content-Encoding")
	if ce != "gzip" {
		t.Errorf("expected Content-Encoding gzip, got %q", ce)
	}
	// The filename embeds the sanitized database name.
	cd := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment; filename=runs_test-backup-") {
		t.Errorf("expected Content-Disposition with backup filename, got %q", cd)
	}

	// Verify the body is valid gzip
	gr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("failed to open gzip reader: %v", err)
	}
	defer gr.Close()

	data, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("failed to read gzip body: %v", err)
	}
	// SQLite databases start with "SQLite format 3\000"
	if len(data) < 16 || string(data[:15]) != "SQLite format 3" {
		t.Error("backup data does not look like a valid SQLite database")
	}

	// The temporary backup file is removed after the response is sent
	leftovers, err := filepath.Glob(filepath.Join(os.TempDir(), "runs_test-backup-*.db"))
	if err != nil {
		t.Fatalf("Failed to list backup files: %v", err)
	}
	if len(leftovers) > 0 {
		t.Errorf("expected backup files to be cleaned up, found %v", leftovers)
	}
}
