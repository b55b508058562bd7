// Package dbscan implements density-based spatial clustering (DBSCAN) over
// 2D labeled points. A run partitions the input into clusters of
// density-reachable points and a list of noise points that belong to no
// cluster.
//
// Reference: Ester, M., H. P. Kriegel, J. Sander, and X. Xu, "A Density-Based
// Algorithm for Discovering Clusters in Large Spatial Databases with Noise",
// Proc. 2nd International Conference on Knowledge Discovery and Data Mining,
// 1996.
package dbscan

import (
	"fmt"
	"math"
)

// Constants for clustering configuration
const (
	// DefaultEps is the default neighborhood radius
	DefaultEps = 0.3
	// DefaultMinPts is the default minimum neighborhood size, inclusive of
	// the query point itself
	DefaultMinPts = 3
	// EstimatedPointsPerCell is used for initial grid index capacity estimation
	EstimatedPointsPerCell = 4
)

// Point is a labeled 2D sample. IDs need not be unique: two points are the
// same point if and only if ID, X and Y are all equal. The struct is
// comparable, so that triple equality is exactly Go map-key equality.
type Point struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Cluster is one dense region found by a run. Members are insertion-ordered
// (seed first, then discovery order) and contain no duplicates. IDs are
// assigned in discovery order starting at 1 and are never reused within a
// run.
type Cluster struct {
	ID     int     `json:"id"`
	Points []Point `json:"points"`
}

// Params contains parameters for the DBSCAN clustering algorithm.
type Params struct {
	// Eps is the neighborhood radius in the input's linear units. It is
	// squared once per run; all comparisons use squared Euclidean distance.
	Eps float64 `json:"eps"`
	// MinPts is the minimum neighborhood size for a core point, counting
	// the point itself.
	MinPts int `json:"min_pts"`
	// UseGrid enables the grid-accelerated region query. Results are
	// identical to the exhaustive scan; only the lookup cost changes.
	// Ignored when Eps is zero (the grid needs a positive cell size).
	UseGrid bool `json:"use_grid,omitempty"`
}

// DefaultParams returns DBSCAN parameters suitable for small exploratory
// datasets.
func DefaultParams() Params {
	return Params{
		Eps:    DefaultEps,
		MinPts: DefaultMinPts,
	}
}

// Validate checks the parameter contract: eps must be non-negative and
// minPts at least 1.
func (p Params) Validate() error {
	if p.Eps < 0 {
		return fmt.Errorf("dbscan: eps must be >= 0, got %v", p.Eps)
	}
	if p.MinPts < 1 {
		return fmt.Errorf("dbscan: minPts must be >= 1, got %d", p.MinPts)
	}
	return nil
}

// Result is the output of one run: clusters in discovery order and the
// points that ended up in no cluster, in seed order. Every input point
// appears in exactly one cluster or in Noise (literal duplicate triples
// collapse to one entry, see Run).
type Result struct {
	Clusters []Cluster `json:"clusters"`
	Noise    []Point   `json:"noise"`
}

// Run clusters points with the given parameters.
//
// Points are processed in input order. For each unvisited point the
// eps-neighborhood is computed over the whole dataset (self included); a
// point with fewer than minPts neighbors becomes a noise candidate, anything
// else seeds a new cluster which is expanded until no further
// density-reachable points exist. A noise candidate that a later expansion
// reaches is reclassified into that cluster and dropped from the final noise
// list.
//
// Visitation and membership are by point value, not by slice index: a
// dataset containing the same (id, x, y) triple twice treats both
// occurrences as one logical point. The duplicate still counts toward
// neighborhood sizes once per occurrence, but appears only once in the
// output.
//
// An empty dataset yields an empty result and no error. Invalid parameters
// and non-finite coordinates fail before any scanning, with no partial
// result.
func Run(points []Point, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := validatePoints(points); err != nil {
		return nil, err
	}

	result := &Result{
		Clusters: []Cluster{},
		Noise:    []Point{},
	}
	if len(points) == 0 {
		return result, nil
	}

	epsSq := params.Eps * params.Eps // squared once, compared against squared distances

	query := newRegionQuerier(points, params)

	visited := make(map[Point]bool, len(points))
	claimed := make(map[Point]bool, len(points))
	noiseSeeds := []Point{}
	clusterID := 0

	for _, p := range points {
		if visited[p] {
			continue
		}
		visited[p] = true

		neighbors := query(p, epsSq)
		if len(neighbors) < params.MinPts {
			noiseSeeds = append(noiseSeeds, p)
			continue
		}

		clusterID++
		c := Cluster{ID: clusterID}
		expandCluster(&c, p, neighbors, query, visited, claimed, epsSq, params.MinPts)
		result.Clusters = append(result.Clusters, c)
	}

	// Noise candidates a later cluster absorbed are no longer noise.
	for _, p := range noiseSeeds {
		if !claimed[p] {
			result.Noise = append(result.Noise, p)
		}
	}

	return result, nil
}

// regionQueryFunc returns the eps-neighborhood of center, self included,
// in dataset order.
type regionQueryFunc func(center Point, epsSq float64) []Point

// newRegionQuerier picks the region query implementation for a run. The
// exhaustive scan is the reference behavior; the grid index is a drop-in
// accelerator that returns byte-identical results.
func newRegionQuerier(points []Point, params Params) regionQueryFunc {
	if params.UseGrid && params.Eps > 0 {
		gi := NewGridIndex(params.Eps)
		gi.Build(points)
		return func(center Point, epsSq float64) []Point {
			return gi.RegionQuery(points, center, epsSq)
		}
	}
	return func(center Point, epsSq float64) []Point {
		return regionQuery(points, center, epsSq)
	}
}

// regionQuery returns every point within eps of center, center itself
// included, preserving dataset order. Duplicate triples are returned once
// per occurrence so neighborhood sizes count occurrences. This is an
// exhaustive O(n) scan over the full dataset.
func regionQuery(points []Point, center Point, epsSq float64) []Point {
	neighbors := []Point{}
	for _, q := range points {
		dx := q.X - center.X
		dy := q.Y - center.Y
		dist2 := dx*dx + dy*dy // squared distance to avoid sqrt

		if dist2 <= epsSq {
			neighbors = append(neighbors, q)
		}
	}
	return neighbors
}

// expandCluster grows c from a core seed point. The neighbor worklist is
// iterated with an index cursor while being appended to, so points reached
// through later neighborhoods are handled in the same pass. A point already
// claimed by any cluster is never added to another one; a worklist point
// whose own neighborhood meets minPts contributes its unseen neighbors to
// the worklist.
func expandCluster(c *Cluster, seed Point, neighbors []Point, query regionQueryFunc,
	visited, claimed map[Point]bool, epsSq float64, minPts int) {

	c.Points = append(c.Points, seed)
	claimed[seed] = true

	// Tracks worklist membership by value so each distinct point is
	// appended at most once.
	inList := make(map[Point]bool, len(neighbors))
	for _, q := range neighbors {
		inList[q] = true
	}

	for j := 0; j < len(neighbors); j++ {
		q := neighbors[j]

		if !visited[q] {
			visited[q] = true
			region := query(q, epsSq)
			if len(region) >= minPts {
				// Core point: its unseen neighbors join the worklist.
				for _, r := range region {
					if !inList[r] {
						inList[r] = true
						neighbors = append(neighbors, r)
					}
				}
			}
		}

		if !claimed[q] {
			c.Points = append(c.Points, q)
			claimed[q] = true
		}
	}
}

// validatePoints rejects non-finite coordinates before any distance math
// sees them. NaN and infinite values would make neighborhood comparisons
// meaningless.
func validatePoints(points []Point) error {
	for i, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("dbscan: point %d (id %q) has non-finite coordinates (%v, %v)", i, p.ID, p.X, p.Y)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
