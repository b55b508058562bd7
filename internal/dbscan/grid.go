package dbscan

import (
	"math"
	"sort"
)

// GridIndex provides accelerated region queries using a regular grid.
// Cell size should match the eps parameter so a 3x3 cell walk covers
// every candidate neighborhood.
type GridIndex struct {
	CellSize float64
	Grid     map[int64][]int // Cell ID → point indices
}

// NewGridIndex creates a grid index with the specified cell size.
// The cell size must be positive.
func NewGridIndex(cellSize float64) *GridIndex {
	return &GridIndex{
		CellSize: cellSize,
		Grid:     make(map[int64][]int),
	}
}

// Build populates the index from a dataset. Every occurrence is indexed, so
// duplicate triples keep their occurrence count in query results.
func (gi *GridIndex) Build(points []Point) {
	gi.Grid = make(map[int64][]int, len(points)/EstimatedPointsPerCell)

	for i, p := range points {
		cellID := pairCells(gi.cellCoord(p.X), gi.cellCoord(p.Y))
		gi.Grid[cellID] = append(gi.Grid[cellID], i)
	}
}

// RegionQuery returns every point within sqrt(epsSq) of center, in dataset
// order. The output is interchangeable with the exhaustive scan: candidate
// indices from the 3x3 cell neighborhood are re-sorted to input order before
// the distance filter runs.
func (gi *GridIndex) RegionQuery(points []Point, center Point, epsSq float64) []Point {
	cellX := gi.cellCoord(center.X)
	cellY := gi.cellCoord(center.Y)

	candidates := []int{}
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			cellID := pairCells(cellX+dx, cellY+dy)
			candidates = append(candidates, gi.Grid[cellID]...)
		}
	}
	sort.Ints(candidates)

	neighbors := []Point{}
	for _, idx := range candidates {
		q := points[idx]
		dx := q.X - center.X
		dy := q.Y - center.Y
		if dx*dx+dy*dy <= epsSq {
			neighbors = append(neighbors, q)
		}
	}
	return neighbors
}

func (gi *GridIndex) cellCoord(v float64) int64 {
	return int64(math.Floor(v / gi.CellSize))
}

// pairCells computes a unique cell identifier from signed cell coordinates.
// Coordinates are mapped to non-negative integers with zigzag encoding, then
// combined with Szudzik's pairing function.
func pairCells(cellX, cellY int64) int64 {
	var a, b int64
	if cellX >= 0 {
		a = 2 * cellX
	} else {
		a = -2*cellX - 1
	}
	if cellY >= 0 {
		b = 2 * cellY
	} else {
		b = -2*cellY - 1
	}

	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}
