package store

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DevMode switches getMigrationsFS to read migration files from the local
// source tree instead of the embedded copy, so schema edits apply without
// a rebuild.
var DevMode = false

// devMigrationsDir is where migrations live relative to the repo root.
const devMigrationsDir = "internal/store/migrations"

// getMigrationsFS returns the filesystem the migration runner reads, with
// migration files at its root.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		if _, err := os.Stat(devMigrationsDir); err != nil {
			return nil, fmt.Errorf("dev migrations dir %s: %w", devMigrationsDir, err)
		}
		return os.DirFS(devMigrationsDir), nil
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}
	return sub, nil
}
