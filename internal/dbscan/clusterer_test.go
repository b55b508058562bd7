package dbscan

import (
	"testing"
)

func TestDBSCANClusterer_NewDefaultDBSCANClusterer(t *testing.T) {
	clusterer := NewDefaultDBSCANClusterer()
	if clusterer == nil {
		t.Fatal("expected non-nil clusterer")
	}

	params := clusterer.GetParams()
	if params.Eps != DefaultEps {
		t.Errorf("expected Eps=%f, got %f", DefaultEps, params.Eps)
	}
	if params.MinPts != DefaultMinPts {
		t.Errorf("expected MinPts=%d, got %d", DefaultMinPts, params.MinPts)
	}
}

func TestDBSCANClusterer_NewDBSCANClusterer(t *testing.T) {
	eps := 0.8
	minPts := 15
	clusterer := NewDBSCANClusterer(eps, minPts)
	if clusterer == nil {
		t.Fatal("expected non-nil clusterer")
	}

	params := clusterer.GetParams()
	if params.Eps != eps {
		t.Errorf("expected Eps=%f, got %f", eps, params.Eps)
	}
	if params.MinPts != minPts {
		t.Errorf("expected MinPts=%d, got %d", minPts, params.MinPts)
	}
}

func TestDBSCANClusterer_SetParams(t *testing.T) {
	clusterer := NewDefaultDBSCANClusterer()

	newParams := Params{
		Eps:    1.0,
		MinPts: 20,
	}
	clusterer.SetParams(newParams)

	gotParams := clusterer.GetParams()
	if gotParams.Eps != newParams.Eps {
		t.Errorf("expected Eps=%f, got %f", newParams.Eps, gotParams.Eps)
	}
	if gotParams.MinPts != newParams.MinPts {
		t.Errorf("expected MinPts=%d, got %d", newParams.MinPts, gotParams.MinPts)
	}
}

func TestDBSCANClusterer_Cluster_EmptyInput(t *testing.T) {
	clusterer := NewDefaultDBSCANClusterer()
	result, err := clusterer.Cluster(nil)
	if err != nil {
		t.Fatalf("Cluster returned error: %v", err)
	}
	if len(result.Clusters) != 0 || len(result.Noise) != 0 {
		t.Errorf("expected empty result for empty input, got %d clusters, %d noise",
			len(result.Clusters), len(result.Noise))
	}
}

func TestDBSCANClusterer_Cluster_InvalidParams(t *testing.T) {
	clusterer := NewDBSCANClusterer(-1.0, 3)
	_, err := clusterer.Cluster([]Point{{ID: "a", X: 0, Y: 0}})
	if err == nil {
		t.Fatal("expected error for negative eps, got nil")
	}
}

func TestDBSCANClusterer_Cluster_SingleCluster(t *testing.T) {
	// A tight blob; every point within DefaultEps of its neighbors.
	points := []Point{
		{ID: "p0", X: 5.0, Y: 5.0},
		{ID: "p1", X: 5.1, Y: 5.0},
		{ID: "p2", X: 5.0, Y: 5.1},
		{ID: "p3", X: 5.1, Y: 5.1},
		{ID: "p4", X: 5.2, Y: 5.0},
		{ID: "p5", X: 5.0, Y: 5.2},
		{ID: "p6", X: 5.2, Y: 5.2},
		{ID: "p7", X: 5.1, Y: 5.2},
		{ID: "p8", X: 5.2, Y: 5.1},
	}

	clusterer := NewDefaultDBSCANClusterer()
	result, err := clusterer.Cluster(points)
	if err != nil {
		t.Fatalf("Cluster returned error: %v", err)
	}

	if len(result.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(result.Clusters))
	}
	if len(result.Clusters[0].Points) != len(points) {
		t.Errorf("expected %d points in cluster, got %d", len(points), len(result.Clusters[0].Points))
	}
	if len(result.Noise) != 0 {
		t.Errorf("expected 0 noise points, got %d", len(result.Noise))
	}
}

func TestDBSCANClusterer_Cluster_Determinism(t *testing.T) {
	points := []Point{
		{ID: "a0", X: 5.0, Y: 5.0},
		{ID: "a1", X: 5.1, Y: 5.1},
		{ID: "a2", X: 5.2, Y: 5.0},
		{ID: "a3", X: 5.0, Y: 5.2},
		{ID: "b0", X: 10.0, Y: 10.0},
		{ID: "b1", X: 10.1, Y: 10.1},
		{ID: "b2", X: 10.2, Y: 10.0},
		{ID: "b3", X: 10.0, Y: 10.2},
		{ID: "n0", X: 50.0, Y: 50.0},
	}

	clusterer := NewDBSCANClusterer(0.5, 3)

	run1, err := clusterer.Cluster(points)
	if err != nil {
		t.Fatalf("Cluster returned error: %v", err)
	}
	run2, err := clusterer.Cluster(points)
	if err != nil {
		t.Fatalf("Cluster returned error: %v", err)
	}

	if len(run1.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(run1.Clusters))
	}
	if len(run1.Clusters) != len(run2.Clusters) {
		t.Fatalf("inconsistent cluster counts: %d vs %d", len(run1.Clusters), len(run2.Clusters))
	}
	for i := range run1.Clusters {
		if got, want := pointIDs(run1.Clusters[i].Points), pointIDs(run2.Clusters[i].Points); got != want {
			t.Errorf("cluster %d membership differs between runs: %s vs %s", i, want, got)
		}
	}
	if got, want := pointIDs(run1.Noise), pointIDs(run2.Noise); got != want {
		t.Errorf("noise differs between runs: %s vs %s", want, got)
	}
}

func TestDBSCANClusterer_Interface(t *testing.T) {
	// Compile-time check that DBSCANClusterer implements Clusterer
	var _ Clusterer = (*DBSCANClusterer)(nil)
}
