package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/report"
)

// ErrNotFound reports a run ID with no stored row. Callers that need to
// distinguish missing runs from storage failures test with errors.Is.
var ErrNotFound = errors.New("run not found")

// Run is the persisted summary of one clustering invocation.
type Run struct {
	RunID        string  `json:"run_id"`
	Source       string  `json:"source"`
	Eps          float64 `json:"eps"`
	MinPts       int     `json:"min_pts"`
	PointCount   int     `json:"point_count"`
	ClusterCount int     `json:"cluster_count"`
	NoiseCount   int     `json:"noise_count"`
	DurationMs   float64 `json:"duration_ms"`
	CreatedAt    int64   `json:"created_at"`
}

// RunMeta carries request-scoped context for a persisted run.
type RunMeta struct {
	Source   string
	Params   dbscan.Params
	Duration time.Duration
}

// StoredRun bundles a run header with its reconstructed result and
// per-cluster metrics.
type StoredRun struct {
	Run      Run                     `json:"run"`
	Result   *dbscan.Result          `json:"result"`
	Clusters []report.ClusterMetrics `json:"cluster_metrics"`
}

// RunStore provides persistence for clustering runs.
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun persists a result with its membership and per-cluster metrics in
// one transaction and returns the stored run header. The run ID is a fresh
// UUID.
func (s *RunStore) SaveRun(result *dbscan.Result, meta RunMeta) (*Run, error) {
	run := &Run{
		RunID:        uuid.New().String(),
		Source:       meta.Source,
		Eps:          meta.Params.Eps,
		MinPts:       meta.Params.MinPts,
		ClusterCount: len(result.Clusters),
		NoiseCount:   len(result.Noise),
		DurationMs:   float64(meta.Duration) / float64(time.Millisecond),
		CreatedAt:    time.Now().UnixNano(),
	}
	for _, c := range result.Clusters {
		run.PointCount += len(c.Points)
	}
	run.PointCount += len(result.Noise)

	metrics := report.ComputeMetrics(result)

	err := retryOnBusy(func() error {
		return s.saveRunTx(run, result, metrics)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *RunStore) saveRunTx(run *Run, result *dbscan.Result, metrics []report.ClusterMetrics) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO runs (
			run_id, source, eps, min_pts, point_count, cluster_count,
			noise_count, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, run.Eps, run.MinPts, run.PointCount,
		run.ClusterCount, run.NoiseCount, run.DurationMs, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range metrics {
		if _, err := tx.Exec(`
			INSERT INTO run_clusters (
				run_id, cluster_id, size, centroid_x, centroid_y,
				width, height, radius_p95, density, aspect_ratio
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, m.ClusterID, m.Size, m.CentroidX, m.CentroidY,
			m.Width, m.Height, m.RadiusP95, m.Density, m.AspectRatio,
		); err != nil {
			return fmt.Errorf("insert run cluster %d: %w", m.ClusterID, err)
		}
	}

	// seq preserves engine output order so GetRun rebuilds the result
	// exactly: cluster members first, cluster by cluster, then noise.
	seq := 0
	insertPoint := func(clusterID interface{}, p dbscan.Point) error {
		_, err := tx.Exec(`
			INSERT INTO run_points (run_id, seq, cluster_id, point_id, x, y)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.RunID, seq, clusterID, p.ID, p.X, p.Y,
		)
		seq++
		return err
	}
	for _, c := range result.Clusters {
		for _, p := range c.Points {
			if err := insertPoint(c.ID, p); err != nil {
				return fmt.Errorf("insert cluster point: %w", err)
			}
		}
	}
	for _, p := range result.Noise {
		if err := insertPoint(nil, p); err != nil {
			return fmt.Errorf("insert noise point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}
	return nil
}

// GetRun retrieves a stored run by ID with its reconstructed result.
func (s *RunStore) GetRun(runID string) (*StoredRun, error) {
	var run Run
	err := s.db.QueryRow(`
		SELECT run_id, source, eps, min_pts, point_count, cluster_count,
		       noise_count, duration_ms, created_at
		FROM runs
		WHERE run_id = ?`, runID).Scan(
		&run.RunID,
		&run.Source,
		&run.Eps,
		&run.MinPts,
		&run.PointCount,
		&run.ClusterCount,
		&run.NoiseCount,
		&run.DurationMs,
		&run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	metrics, err := s.runClusterMetrics(runID)
	if err != nil {
		return nil, err
	}

	result, err := s.runResult(runID)
	if err != nil {
		return nil, err
	}

	return &StoredRun{Run: run, Result: result, Clusters: metrics}, nil
}

// ListRuns returns run headers newest first, up to limit. A non-positive
// limit falls back to 50.
func (s *RunStore) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT run_id, source, eps, min_pts, point_count, cluster_count,
		       noise_count, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.RunID,
			&run.Source,
			&run.Eps,
			&run.MinPts,
			&run.PointCount,
			&run.ClusterCount,
			&run.NoiseCount,
			&run.DurationMs,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its membership rows.
func (s *RunStore) DeleteRun(runID string) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin delete run: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM run_points WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("delete run points: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM run_clusters WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("delete run clusters: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit delete run: %w", err)
		}
		return nil
	})
}

// runClusterMetrics loads the per-cluster metrics rows for a run.
func (s *RunStore) runClusterMetrics(runID string) ([]report.ClusterMetrics, error) {
	rows, err := s.db.Query(`
		SELECT cluster_id, size, centroid_x, centroid_y, width, height,
		       radius_p95, density, aspect_ratio
		FROM run_clusters
		WHERE run_id = ?
		ORDER BY cluster_id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run clusters: %w", err)
	}
	defer rows.Close()

	metrics := []report.ClusterMetrics{}
	for rows.Next() {
		var m report.ClusterMetrics
		if err := rows.Scan(
			&m.ClusterID,
			&m.Size,
			&m.CentroidX,
			&m.CentroidY,
			&m.Width,
			&m.Height,
			&m.RadiusP95,
			&m.Density,
			&m.AspectRatio,
		); err != nil {
			return nil, fmt.Errorf("scan run cluster: %w", err)
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// runResult rebuilds the engine output from the membership table. Points
// were inserted in result order, so scanning by seq restores cluster
// membership order and noise order exactly.
func (s *RunStore) runResult(runID string) (*dbscan.Result, error) {
	rows, err := s.db.Query(`
		SELECT cluster_id, point_id, x, y
		FROM run_points
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run points: %w", err)
	}
	defer rows.Close()

	result := &dbscan.Result{Clusters: []dbscan.Cluster{}, Noise: []dbscan.Point{}}
	positions := make(map[int]int)
	for rows.Next() {
		var clusterID sql.NullInt64
		var p dbscan.Point
		if err := rows.Scan(&clusterID, &p.ID, &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scan run point: %w", err)
		}

		if !clusterID.Valid {
			result.Noise = append(result.Noise, p)
			continue
		}

		cid := int(clusterID.Int64)
		pos, ok := positions[cid]
		if !ok {
			pos = len(result.Clusters)
			positions[cid] = pos
			result.Clusters = append(result.Clusters, dbscan.Cluster{ID: cid})
		}
		result.Clusters[pos].Points = append(result.Clusters[pos].Points, p)
	}

	return result, rows.Err()
}
