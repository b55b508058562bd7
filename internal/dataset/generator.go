package dataset

import (
	"fmt"
	"math/rand"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// Generator produces synthetic datasets for demos and tests: gaussian blobs
// scattered over a square area plus uniform background noise. Output is
// deterministic for a given seed and configuration.
type Generator struct {
	// Configuration
	Clusters         int     // number of blobs
	PointsPerCluster int     // points per blob
	NoisePoints      int     // uniform background points
	Spread           float64 // blob standard deviation
	AreaSize         float64 // side length of the square area

	rng *rand.Rand
}

// NewGenerator creates a generator with the given seed and sensible
// defaults: three tight blobs and a sprinkle of background noise over a
// 10x10 area.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Clusters:         3,
		PointsPerCluster: 40,
		NoisePoints:      20,
		Spread:           0.25,
		AreaSize:         10.0,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// Generate builds the dataset: blob points first (cluster by cluster), then
// noise. Blob points are named c<cluster>-<seq>, noise points noise-<seq>.
func (g *Generator) Generate() []dbscan.Point {
	points := make([]dbscan.Point, 0, g.Clusters*g.PointsPerCluster+g.NoisePoints)

	// Keep blob centers away from the area edge so the blobs stay inside.
	margin := 4 * g.Spread
	span := g.AreaSize - 2*margin
	if span < 0 {
		span = 0
	}

	for c := 0; c < g.Clusters; c++ {
		centerX := margin + g.rng.Float64()*span
		centerY := margin + g.rng.Float64()*span
		for i := 0; i < g.PointsPerCluster; i++ {
			points = append(points, dbscan.Point{
				ID: fmt.Sprintf("c%d-%03d", c, i),
				X:  centerX + g.rng.NormFloat64()*g.Spread,
				Y:  centerY + g.rng.NormFloat64()*g.Spread,
			})
		}
	}

	for i := 0; i < g.NoisePoints; i++ {
		points = append(points, dbscan.Point{
			ID: fmt.Sprintf("noise-%03d", i),
			X:  g.rng.Float64() * g.AreaSize,
			Y:  g.rng.Float64() * g.AreaSize,
		})
	}

	return points
}
