package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/scatter.report/internal/dbscan"
)

// ChartOptions configures RenderChartHTML output. Zero values fall back to
// defaults.
type ChartOptions struct {
	Title    string
	Subtitle string
	Width    string
	Height   string
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Title == "" {
		o.Title = "DBSCAN clusters"
	}
	if o.Width == "" {
		o.Width = "900px"
	}
	if o.Height == "" {
		o.Height = "900px"
	}
	return o
}

// RenderChartHTML writes a self-contained ECharts scatter page for the
// result. Each cluster is its own series so the legend can toggle it, and
// tooltips carry point IDs. Axis ranges share a single span so cluster
// shapes are not distorted.
func RenderChartHTML(w io.Writer, result *dbscan.Result, options ChartOptions) error {
	options = options.withDefaults()

	xLo, xHi, yLo, yHi := equalSpanBounds(result)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: options.Title, Theme: "dark", Width: options.Width, Height: options.Height}),
		charts.WithTitleOpts(opts.Title{Title: options.Title, Subtitle: options.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: xLo, Max: xHi, Name: "x", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: yLo, Max: yHi, Name: "y", NameLocation: "middle", NameGap: 30}),
	)

	colors := clusterHexColors(len(result.Clusters))
	for i, c := range result.Clusters {
		data := make([]opts.ScatterData, 0, len(c.Points))
		for _, p := range c.Points {
			data = append(data, opts.ScatterData{Name: p.ID, Value: []interface{}{p.X, p.Y}})
		}
		scatter.AddSeries(fmt.Sprintf("cluster %d", c.ID), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colors[i]}),
		)
	}

	if len(result.Noise) > 0 {
		data := make([]opts.ScatterData, 0, len(result.Noise))
		for _, p := range result.Noise {
			data = append(data, opts.ScatterData{Name: p.ID, Value: []interface{}{p.X, p.Y}})
		}
		scatter.AddSeries("noise", data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}),
		)
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// clusterHexColors mirrors generateColors for renderers that want CSS hex
// strings instead of color.Color values.
func clusterHexColors(n int) []string {
	if n <= 0 {
		return nil
	}

	colors := make([]string, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return colors
}
