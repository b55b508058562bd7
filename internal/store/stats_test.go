package store

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

func TestGetDatabaseStats_EmptyDatabase(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "stats_empty.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	stats, err := db.GetDatabaseStats()
	if err != nil {
		t.Fatalf("Failed to get database stats: %v", err)
	}

	if stats == nil {
		t.Fatal("Expected stats to be non-nil")
	}

	if stats.TotalSizeMB <= 0 {
		t.Error("Expected positive total size even for empty database")
	}

	// Should have some tables from schema
	if len(stats.Tables) == 0 {
		t.Error("Expected at least some tables from schema")
	}

	names := map[string]bool{}
	for _, table := range stats.Tables {
		names[table.Name] = true
	}
	for _, want := range []string{"runs", "run_clusters", "run_points"} {
		if !names[want] {
			t.Errorf("Expected %s table in stats", want)
		}
	}
}

func TestGetDatabaseStats_WithData(t *testing.T) {
	db, rs := newTestStore(t)

	// Insert enough runs to give the membership tables real pages
	for i := 0; i < 50; i++ {
		if _, err := rs.SaveRun(sampleResult(), RunMeta{
			Source: "stats",
			Params: dbscan.Params{Eps: 0.3, MinPts: 3},
		}); err != nil {
			t.Fatalf("SaveRun %d failed: %v", i, err)
		}
	}

	stats, err := db.GetDatabaseStats()
	if err != nil {
		t.Fatalf("Failed to get database stats: %v", err)
	}

	// Find runs table
	var runsTable *TableStats
	for i := range stats.Tables {
		if stats.Tables[i].Name == "runs" {
			runsTable = &stats.Tables[i]
			break
		}
	}

	if runsTable == nil {
		t.Fatal("Expected runs table in stats")
	}

	if runsTable.RowCount != 50 {
		t.Errorf("Expected 50 rows in runs, got %d", runsTable.RowCount)
	}

	// Size should be positive
	if runsTable.SizeMB <= 0 {
		t.Errorf("Expected positive size for runs table")
	}

	// Tables come back largest first
	for i := 1; i < len(stats.Tables); i++ {
		if stats.Tables[i].SizeMB > stats.Tables[i-1].SizeMB {
			t.Errorf("Tables not sorted by size: %s (%f) after %s (%f)",
				stats.Tables[i].Name, stats.Tables[i].SizeMB,
				stats.Tables[i-1].Name, stats.Tables[i-1].SizeMB)
		}
	}
}
