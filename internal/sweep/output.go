package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvHeader is the column order shared by WriteCSV and FormatCSVRow.
var csvHeader = []string{
	"eps", "min_pts", "clusters", "noise_points", "largest_cluster",
	"cluster_size_mean", "cluster_size_stddev", "duration_ms",
}

// FormatCSVRow renders one combination result in csvHeader order.
func FormatCSVRow(r ComboResult) []string {
	return []string{
		fmt.Sprintf("%.6f", r.Eps),
		fmt.Sprintf("%d", r.MinPts),
		fmt.Sprintf("%d", r.Clusters),
		fmt.Sprintf("%d", r.NoisePoints),
		fmt.Sprintf("%d", r.LargestCluster),
		fmt.Sprintf("%.3f", r.ClusterSizeMean),
		fmt.Sprintf("%.3f", r.ClusterSizeStddev),
		fmt.Sprintf("%.3f", r.DurationMs),
	}
}

// WriteCSV writes a header row followed by one row per combination result.
func WriteCSV(w io.Writer, results []ComboResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(FormatCSVRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes a fixed-width text table of combination results, one row
// per combination in grid order.
func WriteTable(w io.Writer, results []ComboResult) error {
	if _, err := fmt.Fprintf(w, "%10s %8s %9s %7s %9s %11s %13s\n",
		"eps", "min_pts", "clusters", "noise", "largest", "size_mean", "duration_ms"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%10.4f %8d %9d %7d %9d %11.2f %13.3f\n",
			r.Eps, r.MinPts, r.Clusters, r.NoisePoints, r.LargestCluster,
			r.ClusterSizeMean, r.DurationMs); err != nil {
			return err
		}
	}
	return nil
}
