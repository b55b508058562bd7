package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/scatter.report/internal/api"
	"github.com/banshee-data/scatter.report/internal/config"
	"github.com/banshee-data/scatter.report/internal/dataset"
	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/report"
	"github.com/banshee-data/scatter.report/internal/security"
	"github.com/banshee-data/scatter.report/internal/store"
	"github.com/banshee-data/scatter.report/internal/sweep"
	"github.com/banshee-data/scatter.report/internal/version"
)

func main() {
	// Input handling
	input := flag.String("input", "", "Input CSV file with point rows")
	idCol := flag.Int("id-col", 0, "Zero-based column index of the point ID")
	xCol := flag.Int("x-col", 1, "Zero-based column index of the X coordinate")
	yCol := flag.Int("y-col", 2, "Zero-based column index of the Y coordinate")
	skipHeader := flag.Bool("skip-header", false, "Skip the first record of the input file")
	delimiter := flag.String("delimiter", ",", "Field delimiter (first character is used)")

	// Clustering parameters
	eps := flag.Float64("eps", dbscan.DefaultEps, "Neighborhood radius")
	minPts := flag.Int("min-pts", dbscan.DefaultMinPts, "Minimum neighborhood size, counting the point itself")
	useGrid := flag.Bool("grid", false, "Use the grid-accelerated region query (identical results)")
	configFile := flag.String("config", "", "JSON tuning file supplying defaults for flags left unset")

	// Outputs
	plotFile := flag.String("plot", "", "Write a PNG scatter plot to this path")
	chartFile := flag.String("chart", "", "Write an interactive HTML chart to this path")
	dbFile := flag.String("db", "", "Persist the run to this SQLite database (empty disables)")
	source := flag.String("source", "", "Source label stored with the run (defaults to the input file name)")

	// Sweep mode
	sweepMode := flag.Bool("sweep", false, "Run a parameter sweep instead of a single clustering run")
	epsList := flag.String("eps-list", "", "Comma-separated eps values (e.g. 0.1,0.2,0.3) or range min:max:step")
	minPtsList := flag.String("min-pts-list", "", "Comma-separated minPts values (e.g. 3,5,10) or range min:max:step")
	minClusters := flag.Int("min-clusters", 1, "Cluster-count floor when picking the best sweep combination")
	output := flag.String("output", "", "Sweep summary CSV filename (defaults to sweep-<input>-<timestamp>.csv)")

	// Remote mode
	remote := flag.String("remote", "", "Base URL of a scatterd instance; clustering runs there instead of in-process")
	persist := flag.Bool("persist", false, "With -remote, ask the server to persist the run")

	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("scatter %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	// Subcommand dispatch: "scatter migrate <action>" owns all schema changes.
	if args := flag.Args(); len(args) > 0 && args[0] == "migrate" {
		path := *dbFile
		if path == "" {
			path = "scatter_data.db"
		}
		store.RunMigrateCommand(args[1:], path)
		return
	}

	// Record which flags the user set explicitly so tuning-file values only
	// fill the gaps.
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	var tuning *config.TuningConfig
	if *configFile != "" {
		cfg, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		tuning = cfg
		if !explicit["eps"] {
			*eps = cfg.GetEps()
		}
		if !explicit["min-pts"] {
			*minPts = cfg.GetMinPts()
		}
		if !explicit["min-clusters"] {
			*minClusters = cfg.GetMinClusters()
		}
	}

	if *input == "" {
		log.Fatal("Input CSV file is required (use -input)")
	}

	points := loadPoints(*input, *idCol, *xCol, *yCol, *skipHeader, *delimiter)
	log.Printf("Loaded %d points from %s", len(points), *input)

	src := *source
	if src == "" {
		src = strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
	}

	if *useGrid && *remote != "" {
		log.Printf("NOTE: -grid only affects in-process runs and is ignored with -remote")
	}

	if *sweepMode {
		req := sweep.SweepRequest{
			EpsSpec:     *epsList,
			MinPtsSpec:  *minPtsList,
			MinClusters: *minClusters,
		}
		if tuning != nil {
			if req.EpsSpec == "" {
				req.EpsSpec = tuning.GetSweepEps()
			}
			if req.MinPtsSpec == "" {
				req.MinPtsSpec = tuning.GetSweepMinPts()
			}
		}

		var results []sweep.ComboResult
		var best *sweep.ComboResult
		if *remote != "" {
			results, best = sweepRemote(*remote, points, req)
		} else {
			results, best = sweepLocal(points, req)
		}

		if err := sweep.WriteTable(os.Stdout, results); err != nil {
			log.Fatalf("Failed to write results table: %v", err)
		}

		filename := *output
		if filename == "" {
			filename = fmt.Sprintf("sweep-%s-%s.csv",
				security.SanitizeFilename(src), time.Now().Format("20060102-150405"))
		}
		writeSweepCSV(filename, results)

		if best != nil {
			log.Printf("Best: eps=%g, min_pts=%d (%d clusters, %d noise points)",
				best.Eps, best.MinPts, best.Clusters, best.NoisePoints)
		} else {
			log.Printf("No combination reached %d cluster(s)", *minClusters)
		}
		log.Printf("Sweep complete!")
		log.Printf("Summary: %s", filename)
		return
	}

	var result *dbscan.Result
	params := dbscan.Params{Eps: *eps, MinPts: *minPts, UseGrid: *useGrid}

	if *remote != "" {
		result = clusterRemote(*remote, points, eps, minPts, *persist, src)
	} else {
		result = clusterLocal(points, params, *dbFile, src)
	}

	if err := report.WriteText(os.Stdout, result); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	subtitle := fmt.Sprintf("eps=%g minPts=%d | %d clusters, %d noise points",
		*eps, *minPts, len(result.Clusters), len(result.Noise))

	if *plotFile != "" {
		opts := report.PlotOptions{Title: src}
		if err := report.RenderPNG(*plotFile, result, opts); err != nil {
			log.Fatalf("Failed to render plot: %v", err)
		}
		log.Printf("Wrote plot: %s", *plotFile)
	}

	if *chartFile != "" {
		f, err := os.Create(*chartFile)
		if err != nil {
			log.Fatalf("Could not create chart file %s: %v", *chartFile, err)
		}
		opts := report.ChartOptions{Title: src, Subtitle: subtitle}
		if err := report.RenderChartHTML(f, result, opts); err != nil {
			f.Close()
			log.Fatalf("Failed to render chart: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("Failed to close chart file: %v", err)
		}
		log.Printf("Wrote chart: %s", *chartFile)
	}
}

// loadPoints reads the input file with the configured column mapping.
func loadPoints(path string, idCol, xCol, yCol int, skipHeader bool, delimiter string) []dbscan.Point {
	opts := dataset.LoadOptions{
		IDColumn:   idCol,
		XColumn:    xCol,
		YColumn:    yCol,
		SkipHeader: skipHeader,
	}
	if delimiter != "" {
		opts.Delimiter = []rune(delimiter)[0]
	}

	points, err := dataset.LoadCSV(path, opts)
	if err != nil {
		log.Fatalf("Failed to load points: %v", err)
	}
	return points
}

// clusterLocal runs the engine in-process and optionally persists the run.
func clusterLocal(points []dbscan.Point, params dbscan.Params, dbFile, src string) *dbscan.Result {
	start := time.Now()
	result, err := dbscan.Run(points, params)
	if err != nil {
		log.Fatalf("Clustering failed: %v", err)
	}
	elapsed := time.Since(start)

	log.Printf("Clustered %d points in %.2fms: %d clusters, %d noise points",
		len(points), float64(elapsed)/float64(time.Millisecond),
		len(result.Clusters), len(result.Noise))

	if dbFile != "" {
		db, err := store.NewDB(dbFile)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		run, err := store.NewRunStore(db).SaveRun(result, store.RunMeta{
			Source:   src,
			Params:   params,
			Duration: elapsed,
		})
		if err != nil {
			log.Fatalf("Failed to save run: %v", err)
		}
		log.Printf("Saved run %s to %s", run.RunID, dbFile)
	}

	return result
}

// clusterRemote sends the points to a scatterd instance. eps and minPts are
// passed through as pointers so the flag values land in the request as-is.
func clusterRemote(baseURL string, points []dbscan.Point, eps *float64, minPts *int, persist bool, src string) *dbscan.Result {
	client := api.NewClient(baseURL, nil)
	resp, err := client.Cluster(api.ClusterRequest{
		Points:  points,
		Eps:     eps,
		MinPts:  minPts,
		Persist: persist,
		Source:  src,
	})
	if err != nil {
		log.Fatalf("Remote clustering failed: %v", err)
	}

	log.Printf("Clustered %d points in %.2fms: %d clusters, %d noise points",
		len(points), resp.DurationMs, len(resp.Result.Clusters), len(resp.Result.Noise))
	if resp.RunID != "" {
		log.Printf("Saved run %s on %s", resp.RunID, baseURL)
	}

	return resp.Result
}

// sweepLocal evaluates the grid in-process.
func sweepLocal(points []dbscan.Point, req sweep.SweepRequest) ([]sweep.ComboResult, *sweep.ComboResult) {
	epsCombos, minPtsCombos, err := sweep.Combinations(req)
	if err != nil {
		log.Fatalf("Invalid parameter list: %v", err)
	}
	log.Printf("Parameter combinations: %d (eps: %d, min_pts: %d)",
		len(epsCombos)*len(minPtsCombos), len(epsCombos), len(minPtsCombos))

	results, err := sweep.RunGrid(context.Background(), points, epsCombos, minPtsCombos)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	return results, sweep.Summarize(results, req.MinClusters)
}

// sweepRemote evaluates the grid on a scatterd instance.
func sweepRemote(baseURL string, points []dbscan.Point, req sweep.SweepRequest) ([]sweep.ComboResult, *sweep.ComboResult) {
	client := api.NewClient(baseURL, nil)
	resp, err := client.Sweep(api.SweepStartRequest{
		Points:       points,
		SweepRequest: req,
	})
	if err != nil {
		log.Fatalf("Remote sweep failed: %v", err)
	}
	return resp.Results, resp.Best
}

// writeSweepCSV writes the sweep summary rows to filename.
func writeSweepCSV(filename string, results []sweep.ComboResult) {
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Could not create output file %s: %v", filename, err)
	}
	if err := sweep.WriteCSV(f, results); err != nil {
		f.Close()
		log.Fatalf("Failed to write output file %s: %v", filename, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to close output file %s: %v", filename, err)
	}
}
