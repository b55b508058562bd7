package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/scatter.report/internal/api"
	"github.com/banshee-data/scatter.report/internal/config"
	"github.com/banshee-data/scatter.report/internal/dbscan"
	"github.com/banshee-data/scatter.report/internal/monitoring"
	"github.com/banshee-data/scatter.report/internal/store"
	"github.com/banshee-data/scatter.report/internal/sweep"
	"github.com/banshee-data/scatter.report/internal/version"
)

var (
	listen        = flag.String("listen", ":8080", "HTTP listen address")
	adminListen   = flag.String("admin-listen", "", "Admin/debug listen address (empty mounts the debug routes on the main listener)")
	dbFile        = flag.String("db", "scatter_data.db", "Path to the SQLite database file")
	configFile    = flag.String("config", "", "Path to a JSON tuning file with clustering defaults")
	autoMigrate   = flag.Bool("auto-migrate", false, "Apply outstanding schema migrations on startup")
	statsInterval = flag.Int("stats-interval", 60, "Database statistics logging interval in seconds (0 disables)")
	verbose       = flag.Bool("verbose", false, "Enable debug logging")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("scatterd %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("HTTP listen address is required")
	}
	if *verbose {
		monitoring.Debug = true
	}

	// Load clustering defaults before touching the database so a bad config
	// file fails fast.
	var tuning *config.TuningConfig
	if *configFile != "" {
		cfg, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		tuning = cfg
		log.Printf("Loaded tuning config from %s (eps=%g, min_pts=%d)",
			*configFile, cfg.GetEps(), cfg.GetMinPts())
	}

	db, err := store.NewDBWithMigrationCheck(*dbFile, *autoMigrate)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	srv := api.NewServer(db, sweep.NewRunner(nil))
	if tuning != nil {
		srv.SetDefaultParams(dbscan.Params{Eps: tuning.GetEps(), MinPts: tuning.GetMinPts()})
	}

	// Create a wait group for the HTTP server, admin server, and stats routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic database stats logging
	if *statsInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(time.Duration(*statsInterval) * time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					logDatabaseStats(db)
				}
			}
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := srv.ServeMux()
		mux.HandleFunc("/", showIndex)

		// With no dedicated admin listener the debug surface shares the
		// main mux, like a single-listener deployment.
		if *adminListen == "" {
			if err := db.AttachAdminRoutes(mux); err != nil {
				log.Fatalf("Failed to attach admin routes: %v", err)
			}
		}

		handler := api.LoggingMiddleware(api.MetricsMiddleware(mux))

		server := &http.Server{
			Addr:    *listen,
			Handler: handler,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("Starting HTTP server on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a shorter timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			// Force close the server if graceful shutdown fails
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Admin server goroutine: tailsql console, db stats, and backup download
	// on a separate listener so the debug surface can stay unexposed.
	if *adminListen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()

			adminMux := http.NewServeMux()
			if err := db.AttachAdminRoutes(adminMux); err != nil {
				log.Fatalf("Failed to attach admin routes: %v", err)
			}

			server := &http.Server{
				Addr:    *adminListen,
				Handler: adminMux,
			}

			go func() {
				log.Printf("Starting admin server on %s", *adminListen)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start admin server: %v", err)
				}
			}()

			<-ctx.Done()
			log.Println("shutting down admin server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("Admin server shutdown error: %v", err)
				if err := server.Close(); err != nil {
					log.Printf("Admin server force close error: %v", err)
				}
			}

			log.Printf("Admin server routine stopped")
		}()
	}

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// logDatabaseStats writes one compact line with total size and the runs
// table row count.
func logDatabaseStats(db *store.DB) {
	stats, err := db.GetDatabaseStats()
	if err != nil {
		monitoring.Logf("Failed to get database stats: %v", err)
		return
	}

	var runRows int64
	for _, tbl := range stats.Tables {
		if tbl.Name == "runs" {
			runRows = tbl.RowCount
		}
	}
	monitoring.Logf("DB stats: %.2f MB total, %d stored runs", stats.TotalSizeMB, runRows)
}

// showIndex serves a small HTML landing page listing the API surface.
func showIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head><title>scatterd</title></head>
<body>
	<h1>scatterd</h1>
	<p>Version %s</p>
	<ul>
		<li><a href="/api/health">Health check</a></li>
		<li><a href="/api/runs">Stored runs</a></li>
		<li><a href="/metrics">Prometheus metrics</a></li>
	</ul>
	<p>POST /api/cluster runs DBSCAN over a point set; GET /api/sweep
	evaluates a parameter grid; /api/sweep/start runs one in the background.</p>
</body>
</html>`, version.Version)
}
