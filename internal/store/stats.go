package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// DatabaseStats summarizes on-disk usage for the debug surface.
type DatabaseStats struct {
	TotalSizeMB float64      `json:"total_size_mb"`
	Tables      []TableStats `json:"tables"`
}

// TableStats holds row count and size for a single table.
type TableStats struct {
	Name     string  `json:"name"`
	RowCount int64   `json:"row_count"`
	SizeMB   float64 `json:"size_mb"`
}

// GetDatabaseStats reports total database size and per-table row counts and
// sizes, largest table first.
func (db *DB) GetDatabaseStats() (*DatabaseStats, error) {
	var pageCount, pageSize int64
	if err := db.QueryRow(`PRAGMA page_count`).Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("query page count: %w", err)
	}
	if err := db.QueryRow(`PRAGMA page_size`).Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("query page size: %w", err)
	}

	stats := &DatabaseStats{
		TotalSizeMB: float64(pageCount*pageSize) / (1024 * 1024),
		Tables:      []TableStats{},
	}

	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query table names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table names: %w", err)
	}

	for _, name := range names {
		var count int64
		if err := db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %q`, name)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count rows in %s: %w", name, err)
		}
		stats.Tables = append(stats.Tables, TableStats{
			Name:     name,
			RowCount: count,
			SizeMB:   db.tableSizeMB(name),
		})
	}

	sort.Slice(stats.Tables, func(i, j int) bool {
		return stats.Tables[i].SizeMB > stats.Tables[j].SizeMB
	})

	return stats, nil
}

// tableSizeMB sums the pages a table occupies, via the dbstat virtual
// table. Builds without dbstat report zero rather than failing the whole
// stats call.
func (db *DB) tableSizeMB(name string) float64 {
	var size sql.NullInt64
	err := db.QueryRow(`SELECT SUM(pgsize) FROM dbstat WHERE name = ?`, name).Scan(&size)
	if err != nil || !size.Valid {
		return 0
	}
	return float64(size.Int64) / (1024 * 1024)
}
