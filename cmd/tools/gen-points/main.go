// Command gen-points generates sample point datasets for testing clustering.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/banshee-data/scatter.report/internal/dataset"
)

func main() {
	output := flag.String("o", "points.csv", "output path")
	clusters := flag.Int("clusters", 3, "number of blobs")
	points := flag.Int("points", 40, "points per blob")
	noise := flag.Int("noise", 20, "background noise points")
	spread := flag.Float64("spread", 0.25, "blob standard deviation")
	area := flag.Float64("area", 10.0, "side length of the square area")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	gen := dataset.NewGenerator(*seed)
	gen.Clusters = *clusters
	gen.PointsPerCluster = *points
	gen.NoisePoints = *noise
	gen.Spread = *spread
	gen.AreaSize = *area

	pts := gen.Generate()
	if err := dataset.WriteCSV(*output, pts); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
	log.Printf("✓ Created: %s (%d points)", *output, len(pts))
}
