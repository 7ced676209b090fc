package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/walkthrough.report/internal/api"
	"github.com/banshee-data/walkthrough.report/internal/config"
	"github.com/banshee-data/walkthrough.report/internal/fsutil"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/pipeline"
	"github.com/banshee-data/walkthrough.report/internal/store"
	"github.com/banshee-data/walkthrough.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Analysis config file (.json, .yaml or .yml); defaults apply when empty")
	input       = flag.String("input", "", "Recorder file, or directory when use_all_files_in_directory is set")
	outDir      = flag.String("out", "", "Output directory (overrides output.dir)")
	dbPath      = flag.String("db", "", "SQLite results database; runs are stored here when set")
	graphPath   = flag.String("graph", "", "Waypoint graph JSON for shortest paths (overrides summary.graph)")
	hitsPath    = flag.String("hits", "", "Attention hit table (overrides summary.hits)")
	serve       = flag.String("serve", "", "Listen address for the results API and debug routes, e.g. localhost:8080; requires -db")
	workers     = flag.Int("workers", -1, "Density pruning workers (overrides density.workers; 0 uses every CPU)")
	verbose     = flag.Bool("verbose", false, "Log per-stage debug output")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// applyFlags overlays command line overrides onto cfg.
func applyFlags(cfg *config.AnalysisConfig) {
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *graphPath != "" {
		cfg.Summary.Graph = *graphPath
	}
	if *hitsPath != "" {
		cfg.Summary.Hits = *hitsPath
	}
	if *workers >= 0 {
		cfg.Density.Workers = *workers
	}
}

func loadConfig(fsys fsutil.FileSystem) (*config.AnalysisConfig, error) {
	cfg := config.DefaultAnalysisConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadAnalysisConfig(fsys, *configPath); err != nil {
			return nil, err
		}
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func analyse(ctx context.Context, fsys fsutil.FileSystem, cfg *config.AnalysisConfig, db *store.DB) error {
	res, err := pipeline.Run(ctx, pipeline.Inputs{FS: fsys, Input: *input, Config: cfg})
	if err != nil {
		return err
	}

	out, err := pipeline.Export(fsys, res, cfg)
	if err != nil {
		return err
	}
	for _, path := range []string{out.Processed, out.Summary, out.DensityImage, out.Charts} {
		if path != "" {
			fmt.Println(path)
		}
	}

	if db != nil {
		runID, err := pipeline.Store(db, res, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("run %s\n", runID)
	}

	s := res.Stats
	fmt.Printf("%d trials, %d valid paths, %d successful; mean duration %.3f, mean distance %.3f\n",
		s.Trials, s.ValidPaths, s.Successes, s.MeanDuration, s.MeanDistance)
	return nil
}

func serveResults(ctx context.Context, db *store.DB, addr string) error {
	mux := http.NewServeMux()

	// mount the admin debugging routes (accessible only over loopback or Tailscale)
	if err := db.AttachAdminRoutes(mux); err != nil {
		return err
	}
	mux.Handle("/api/", api.NewServer(db).ServeMux())

	server := &http.Server{
		Addr:    addr,
		Handler: api.LoggingMiddleware(mux),
	}

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()
	log.Printf("serving results on http://%s/api/runs", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	monitoring.SetVerbose(*verbose)

	if *input == "" && *serve == "" {
		fmt.Fprintln(os.Stderr, "Usage: walkthrough -input <file|dir> [-config file] [-out dir] [-db file] [-serve addr]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *serve != "" && *dbPath == "" {
		log.Fatal("-serve requires -db")
	}

	fsys := fsutil.OSFileSystem{}
	cfg, err := loadConfig(fsys)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var db *store.DB
	if *dbPath != "" {
		db, err = store.OpenAndMigrate(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open results database: %v", err)
		}
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *input != "" {
		if err := analyse(ctx, fsys, cfg, db); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("analysis interrupted")
				return
			}
			log.Fatalf("Analysis failed: %v", err)
		}
	}

	if *serve != "" {
		if err := serveResults(ctx, db, *serve); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("Graceful shutdown complete")
	}
}
