package store

import (
	"io/fs"
	"strings"
	"testing"
)

// TestEmbeddedMigrationsFS verifies the embedded migrations filesystem structure
func TestEmbeddedMigrationsFS(t *testing.T) {
	// Test with DevMode off (embedded FS)
	origDevMode := DevMode
	DevMode = false
	defer func() { DevMode = origDevMode }()

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("Failed to read migrations/ subdirectory: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migration files, found none")
	}

	// Every up migration must have a matching down migration
	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations/: %s", name)
		}
	}
	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %s has no down migration", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %s has no up migration", base)
		}
	}

	// getMigrationsFS must expose the files at its root
	migFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS() failed: %v", err)
	}
	rootEntries, err := fs.ReadDir(migFS, ".")
	if err != nil {
		t.Fatalf("Failed to read getMigrationsFS result: %v", err)
	}
	if len(rootEntries) != len(entries) {
		t.Errorf("getMigrationsFS returned %d entries, embedded FS has %d", len(rootEntries), len(entries))
	}
}

// TestGetLatestMigrationVersion verifies version parsing from embedded filenames
func TestGetLatestMigrationVersion(t *testing.T) {
	migFS, err := getMigrationsFS()
	if err != nil {
		t.Fatalf("getMigrationsFS() failed: %v", err)
	}

	latest, err := GetLatestMigrationVersion(migFS)
	if err != nil {
		t.Fatalf("GetLatestMigrationVersion failed: %v", err)
	}
	if latest != 2 {
		t.Errorf("expected latest migration version 2, got %d", latest)
	}
}
