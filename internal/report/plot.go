package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// PlotOptions configures RenderPNG output. Zero values fall back to
// defaults.
type PlotOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Title == "" {
		o.Title = "DBSCAN clusters"
	}
	if o.Width == 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 8 * vg.Inch
	}
	return o
}

// noiseColor is the grey used for unclustered points in both renderers.
var noiseColor = color.RGBA{R: 158, G: 158, B: 158, A: 255}

// RenderPNG writes a scatter plot of the result to path. Each cluster gets
// its own color from an evenly spaced palette; noise points are drawn as
// grey crosses. Both axes share a single span so distances read true in
// either dimension.
func RenderPNG(path string, result *dbscan.Result, options PlotOptions) error {
	options = options.withDefaults()

	p := plot.New()
	p.Title.Text = options.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	xLo, xHi, yLo, yHi := equalSpanBounds(result)
	p.X.Min, p.X.Max = xLo, xHi
	p.Y.Min, p.Y.Max = yLo, yHi

	// Color palette
	colors := generateColors(len(result.Clusters))

	for i, c := range result.Clusters {
		pts := make(plotter.XYs, len(c.Points))
		for j, pt := range c.Points {
			pts[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("cluster %d scatter: %w", c.ID, err)
		}
		s.GlyphStyle.Color = colors[i]
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("cluster %d (%d pts)", c.ID, len(c.Points)), s)
	}

	if len(result.Noise) > 0 {
		pts := make(plotter.XYs, len(result.Noise))
		for j, pt := range result.Noise {
			pts[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("noise scatter: %w", err)
		}
		s.GlyphStyle.Color = noiseColor
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("noise (%d pts)", len(result.Noise)), s)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(options.Width, options.Height, path); err != nil {
		return fmt.Errorf("save scatter plot: %w", err)
	}

	return nil
}

// equalSpanBounds returns axis ranges centered on the data with equal X and
// Y spans, padded 5% so edge points stay visible. An empty result yields a
// unit window around the origin.
func equalSpanBounds(result *dbscan.Result) (xLo, xHi, yLo, yHi float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	seen := false

	visit := func(points []dbscan.Point) {
		for _, p := range points {
			seen = true
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	for _, c := range result.Clusters {
		visit(c.Points)
	}
	visit(result.Noise)

	if !seen {
		return -1, 1, -1, 1
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	half := span/2 + span*0.05

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	return cx - half, cx + half, cy - half, cy + half
}

// generateColors creates a palette of distinct colors, one per cluster.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
