// Package dataset loads and writes delimited point files and generates
// synthetic datasets. It is the file boundary in front of the clustering
// engine: everything it returns is already validated, so the engine never
// sees a malformed point.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// LoadOptions controls how delimited records map onto points. The zero value
// reads "id,x,y" rows; survey-style files with other layouts (the iris set
// keeps its label in column 4 and the interesting measurements in columns 2
// and 0) are handled by remapping the column indices.
type LoadOptions struct {
	// Delimiter separates fields. Zero means comma.
	Delimiter rune
	// IDColumn, XColumn and YColumn are zero-based field indices.
	IDColumn int
	XColumn  int
	YColumn  int
	// SkipHeader drops the first record.
	SkipHeader bool
}

// DefaultLoadOptions returns options for plain "id,x,y" files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Delimiter: ',', IDColumn: 0, XColumn: 1, YColumn: 2}
}

// Validate checks that the column mapping is usable.
func (o LoadOptions) Validate() error {
	if o.IDColumn < 0 || o.XColumn < 0 || o.YColumn < 0 {
		return fmt.Errorf("dataset: column indices must be >= 0, got id=%d x=%d y=%d",
			o.IDColumn, o.XColumn, o.YColumn)
	}
	return nil
}

func (o LoadOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

func (o LoadOptions) maxColumn() int {
	max := o.IDColumn
	if o.XColumn > max {
		max = o.XColumn
	}
	if o.YColumn > max {
		max = o.YColumn
	}
	return max
}

// LoadCSV reads a delimited point file from disk.
func LoadCSV(path string, opts LoadOptions) ([]dbscan.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	points, err := ReadPoints(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return points, nil
}

// ReadPoints parses delimited records from r into points. Every row must
// carry enough columns for the configured mapping and finite numeric
// coordinates; the first offending line fails the whole load.
func ReadPoints(r io.Reader, opts LoadOptions) ([]dbscan.Point, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.delimiter()
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	points := []dbscan.Point{}
	line := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		line++
		if opts.SkipHeader && line == 1 {
			continue
		}

		if len(record) <= opts.maxColumn() {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d",
				line, opts.maxColumn()+1, len(record))
		}

		x, err := strconv.ParseFloat(record[opts.XColumn], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid x value %q: %w", line, record[opts.XColumn], err)
		}
		y, err := strconv.ParseFloat(record[opts.YColumn], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid y value %q: %w", line, record[opts.YColumn], err)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("line %d: non-finite coordinates (%v, %v)", line, x, y)
		}

		points = append(points, dbscan.Point{
			ID: record[opts.IDColumn],
			X:  x,
			Y:  y,
		})
	}

	return points, nil
}

// WriteCSV writes points to path as "id,x,y" rows.
func WriteCSV(path string, points []dbscan.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset %s: %w", path, err)
	}
	defer f.Close()

	if err := WritePoints(f, points); err != nil {
		return fmt.Errorf("write dataset %s: %w", path, err)
	}
	return nil
}

// WritePoints writes points as "id,x,y" rows. Coordinates use the shortest
// representation that round-trips.
func WritePoints(w io.Writer, points []dbscan.Point) error {
	cw := csv.NewWriter(w)
	for _, p := range points {
		row := []string{
			p.ID,
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
