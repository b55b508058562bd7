package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// ClusterMetrics summarises the shape of a single cluster.
type ClusterMetrics struct {
	ClusterID   int     `json:"cluster_id"`
	Size        int     `json:"size"`
	CentroidX   float64 `json:"centroid_x"`
	CentroidY   float64 `json:"centroid_y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	RadiusP95   float64 `json:"radius_p95"`
	Density     float64 `json:"density"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// ComputeMetrics derives per-cluster shape metrics from a clustering result.
// Metrics are returned in cluster order.
func ComputeMetrics(result *dbscan.Result) []ClusterMetrics {
	metrics := make([]ClusterMetrics, 0, len(result.Clusters))
	for _, c := range result.Clusters {
		metrics = append(metrics, computeClusterMetrics(c))
	}
	return metrics
}

// computeClusterMetrics computes metrics for a single cluster.
func computeClusterMetrics(c dbscan.Cluster) ClusterMetrics {
	if len(c.Points) == 0 {
		return ClusterMetrics{ClusterID: c.ID}
	}

	xs := make([]float64, len(c.Points))
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	centroidX := stat.Mean(xs, nil)
	centroidY := stat.Mean(ys, nil)

	width := floats.Max(xs) - floats.Min(xs)
	height := floats.Max(ys) - floats.Min(ys)

	// Distance of each member from the centroid; the P95 gives a spread
	// measure that ignores stragglers.
	radii := make([]float64, len(c.Points))
	for i, p := range c.Points {
		radii[i] = math.Hypot(p.X-centroidX, p.Y-centroidY)
	}
	sort.Float64s(radii)
	radiusP95 := stat.Quantile(0.95, stat.Empirical, radii, nil)

	// Cluster density: points per unit area of the bounding box.
	area := width * height
	var density float64
	if area > 0 {
		density = float64(len(c.Points)) / area
	}

	// Aspect ratio: max dimension / min dimension.
	var aspectRatio float64
	if width > 0 && height > 0 {
		if width > height {
			aspectRatio = width / height
		} else {
			aspectRatio = height / width
		}
	}

	return ClusterMetrics{
		ClusterID:   c.ID,
		Size:        len(c.Points),
		CentroidX:   centroidX,
		CentroidY:   centroidY,
		Width:       width,
		Height:      height,
		RadiusP95:   radiusP95,
		Density:     density,
		AspectRatio: aspectRatio,
	}
}
