// Package pipeline composes one analysis run: ingest the recorder tables,
// estimate the density field, summarize every trajectory, and then export
// the results to files or to the results store.
//
// Every stage is an explicit call on explicit values. Nothing is cached
// between runs; calling Run twice on the same inputs does the work twice.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/walkthrough.report/internal/config"
	"github.com/banshee-data/walkthrough.report/internal/density"
	"github.com/banshee-data/walkthrough.report/internal/fsutil"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/navgraph"
	"github.com/banshee-data/walkthrough.report/internal/summary"
	"github.com/banshee-data/walkthrough.report/internal/tabular"
	"github.com/banshee-data/walkthrough.report/internal/timeutil"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// ErrNoInput is returned when directory mode matches no files.
var ErrNoInput = errors.New("no input files")

// Inputs are everything one run reads.
type Inputs struct {
	FS fsutil.FileSystem
	// Input is a recorder file, or a directory in directory mode.
	Input  string
	Config *config.AnalysisConfig

	// Paths overrides the graph named in the config. Nil with no graph
	// configured measures straight lines.
	Paths summary.ShortestPathProvider
	// Hits overrides the hit table named in the config.
	Hits summary.HitProvider

	Clock timeutil.Clock
}

// Result is the in-memory outcome of Run.
type Result struct {
	Set   *trajectory.Set
	Field *density.Field
	Rows  []summary.Row
	Stats summary.Stats
	// Categories are the attention categories reported per row.
	Categories []string

	Started time.Time
	Elapsed time.Duration
}

// Sources reads the recorder tables Run ingests. In directory mode every
// file in input matching the configured pattern is read in name order;
// otherwise input is a single file.
func Sources(fsys fsutil.FileSystem, input string, cfg *config.AnalysisConfig) ([]trajectory.Source, error) {
	delim := cfg.Delimiter()
	if !cfg.Ingest.UseAllFilesInDirectory {
		t, err := tabular.ReadFile(fsys, input, delim)
		if err != nil {
			return nil, err
		}
		return []trajectory.Source{{Name: input, Table: t}}, nil
	}

	matches, err := fsys.Glob(filepath.Join(input, cfg.Ingest.Pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", cfg.Ingest.Pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s matches nothing in %s", ErrNoInput, cfg.Ingest.Pattern, input)
	}

	sources := make([]trajectory.Source, 0, len(matches))
	for _, path := range matches {
		t, err := tabular.ReadFile(fsys, path, delim)
		if err != nil {
			return nil, err
		}
		sources = append(sources, trajectory.Source{Name: path, Table: t})
	}
	return sources, nil
}

// Run executes ingest, density estimation and summary statistics in that
// order. The context is checked between stages; a cancelled run returns
// the context error and no partial result.
func Run(ctx context.Context, in Inputs) (*Result, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fsys := in.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	clock := in.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	res := &Result{Started: clock.Now()}

	sources, err := Sources(fsys, in.Input, cfg)
	if err != nil {
		return nil, err
	}
	res.Set, err = trajectory.IngestAll(sources, cfg.TrajectoryConfig())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	colors, err := cfg.BaseColors()
	if err != nil {
		return nil, err
	}
	stage := clock.Now()
	res.Field, err = density.Estimate(res.Set, colors, cfg.DensityParams())
	if err != nil {
		return nil, err
	}
	monitoring.Debugf("density estimate took %v", clock.Since(stage))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths := in.Paths
	if paths == nil && cfg.Summary.Graph != "" {
		g, err := navgraph.LoadFile(fsys, cfg.Summary.Graph)
		if err != nil {
			return nil, err
		}
		monitoring.Logf("loaded waypoint graph %s with %d nodes", cfg.Summary.Graph, g.Len())
		paths = g
	}

	hits := in.Hits
	var hitCategories []string
	if hits == nil && cfg.Summary.Hits != "" {
		t, err := tabular.ReadFile(fsys, cfg.Summary.Hits, cfg.Delimiter())
		if err != nil {
			return nil, err
		}
		hits, hitCategories, err = summary.LoadHits(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Summary.Hits, err)
		}
	} else if hits != nil {
		hitCategories = providedCategories(hits)
	}

	opts := cfg.SummaryOptions()
	if len(opts.Categories) == 0 {
		opts.Categories = hitCategories
	}
	res.Categories = opts.Categories

	res.Rows = summary.Summarize(res.Set, opts, paths, hits)
	res.Stats = summary.Aggregate(res.Rows)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Elapsed = clock.Since(res.Started)
	monitoring.Logf("analysis of %d trajectories finished in %v", res.Set.Len(), res.Elapsed)
	return res, nil
}

// providedCategories lists every category in h, sorted.
func providedCategories(h summary.HitProvider) []string {
	seen := make(map[string]bool)
	var out []string
	for _, counts := range h {
		for c := range counts {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
