package dbscan

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestGridIndex_MatchesExhaustiveScan: the grid query must return exactly
// what the exhaustive scan returns, in the same order, for arbitrary data.
func TestGridIndex_MatchesExhaustiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := make([]Point, 200)
	for i := range points {
		points[i] = Point{
			ID: "p",
			X:  rng.Float64()*10 - 5,
			Y:  rng.Float64()*10 - 5,
		}
	}

	for _, eps := range []float64{0.3, 1.0, 2.5} {
		gi := NewGridIndex(eps)
		gi.Build(points)
		epsSq := eps * eps

		for i := 0; i < len(points); i += 10 {
			want := regionQuery(points, points[i], epsSq)
			got := gi.RegionQuery(points, points[i], epsSq)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("eps=%v center=%d: grid differs from exhaustive (-want +got):\n%s", eps, i, diff)
			}
		}
	}
}

// TestGridIndex_NegativeCoordinates: cell assignment handles negative
// coordinates without collisions.
func TestGridIndex_NegativeCoordinates(t *testing.T) {
	points := []Point{
		{ID: "a", X: -1.1, Y: -1.1},
		{ID: "b", X: -1.0, Y: -1.2},
		{ID: "c", X: 1.1, Y: 1.1},
	}

	gi := NewGridIndex(0.5)
	gi.Build(points)

	got := gi.RegionQuery(points, points[0], 0.25)
	want := regionQuery(points, points[0], 0.25)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("grid differs from exhaustive (-want +got):\n%s", diff)
	}
	if !containsPoint(got, points[1]) {
		t.Errorf("expected b in region of a, got %v", got)
	}
	if containsPoint(got, points[2]) {
		t.Errorf("did not expect c in region of a, got %v", got)
	}
}

// TestPairCells_Unique: distinct cells map to distinct identifiers across
// positive and negative coordinates.
func TestPairCells_Unique(t *testing.T) {
	seen := make(map[int64][2]int64)
	for x := int64(-10); x <= 10; x++ {
		for y := int64(-10); y <= 10; y++ {
			id := pairCells(x, y)
			if prev, ok := seen[id]; ok {
				t.Fatalf("cell ID collision: (%d,%d) and (%d,%d) both map to %d", x, y, prev[0], prev[1], id)
			}
			seen[id] = [2]int64{x, y}
		}
	}
}

// TestRun_GridMatchesExhaustive: a full run with the grid enabled produces
// the identical result, clusters and noise, in the identical order.
func TestRun_GridMatchesExhaustive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]Point, 150)
	for i := range points {
		// Three loose blobs plus scattered background.
		switch i % 4 {
		case 0:
			points[i] = Point{ID: "b1", X: rng.NormFloat64() * 0.3, Y: rng.NormFloat64() * 0.3}
		case 1:
			points[i] = Point{ID: "b2", X: 4 + rng.NormFloat64()*0.3, Y: rng.NormFloat64() * 0.3}
		case 2:
			points[i] = Point{ID: "b3", X: 2 + rng.NormFloat64()*0.3, Y: 4 + rng.NormFloat64()*0.3}
		default:
			points[i] = Point{ID: "bg", X: rng.Float64()*12 - 2, Y: rng.Float64()*12 - 2}
		}
	}

	exhaustive, err := Run(points, Params{Eps: 0.4, MinPts: 4})
	if err != nil {
		t.Fatalf("Run (exhaustive) returned error: %v", err)
	}
	indexed, err := Run(points, Params{Eps: 0.4, MinPts: 4, UseGrid: true})
	if err != nil {
		t.Fatalf("Run (grid) returned error: %v", err)
	}

	if diff := cmp.Diff(exhaustive, indexed); diff != "" {
		t.Errorf("grid run differs from exhaustive run (-exhaustive +grid):\n%s", diff)
	}
}

// TestRun_GridIgnoredForZeroEps: UseGrid with eps zero falls back to the
// exhaustive scan instead of dividing by a zero cell size.
func TestRun_GridIgnoredForZeroEps(t *testing.T) {
	points := []Point{
		{ID: "a", X: 1, Y: 1},
		{ID: "b", X: 1, Y: 1},
		{ID: "c", X: 2, Y: 2},
	}

	result, err := Run(points, Params{Eps: 0, MinPts: 2, UseGrid: true})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Clusters) != 1 || len(result.Noise) != 1 {
		t.Errorf("got %d clusters, %d noise; want 1, 1", len(result.Clusters), len(result.Noise))
	}
}
