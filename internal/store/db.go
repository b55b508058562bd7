// Package store persists clustering runs in SQLite: a run header, the
// per-cluster shape metrics, and the full point membership, all written in
// one transaction so a stored run can be reconstructed exactly. The schema
// is owned by embedded migrations; the package also mounts the operational
// debug surface (tailsql browser, stats, backup download).
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	path string
}

// OpenDB opens the database at path and applies the connection pragmas
// without touching the schema. The migrate command uses this so migrations
// stay the only schema owner.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, path: path}, nil
}

// NewDB opens the database and brings the schema up to the latest embedded
// migration. Fresh files get the full schema; existing files get any
// outstanding migrations applied.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	fsys, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.MigrateUp(fsys); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NewDBWithMigrationCheck opens the database and verifies the schema
// version instead of silently migrating. With autoMigrate set, outstanding
// migrations are applied; otherwise a version mismatch comes back as an
// error so the operator applies migrations deliberately.
func NewDBWithMigrationCheck(path string, autoMigrate bool) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	fsys, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}

	if autoMigrate {
		if err := db.MigrateUp(fsys); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	if err := db.CheckMigrations(fsys); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// applyPragmas sets the connection defaults every open path shares.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return nil
}
