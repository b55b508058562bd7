// Package report renders clustering results for people: plain text for
// terminals, PNG scatter plots for files, and interactive HTML charts for
// browsers. Every renderer consumes a dbscan.Result as-is and never mutates
// it, so the same result can be rendered several ways.
package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// WriteText prints each cluster as a "Cluster N" header followed by one
// "id = ... x = ... y = ..." line per member, then lists noise points under
// a "Noise" header. The per-point line layout is load-bearing: downstream
// scripts parse it, so it must not change.
func WriteText(w io.Writer, result *dbscan.Result) error {
	for _, c := range result.Clusters {
		if _, err := fmt.Fprintf(w, "Cluster %d\n", c.ID); err != nil {
			return err
		}
		if err := writePoints(w, c.Points); err != nil {
			return err
		}
	}

	if len(result.Noise) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Noise"); err != nil {
		return err
	}
	return writePoints(w, result.Noise)
}

func writePoints(w io.Writer, points []dbscan.Point) error {
	for _, p := range points {
		if _, err := fmt.Fprintf(w, "id = %s x = %f y = %f\n", p.ID, p.X, p.Y); err != nil {
			return err
		}
	}
	return nil
}
