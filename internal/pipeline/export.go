package pipeline

import (
	"fmt"
	"io"

	"github.com/banshee-data/walkthrough.report/internal/config"
	"github.com/banshee-data/walkthrough.report/internal/density"
	"github.com/banshee-data/walkthrough.report/internal/fsutil"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/report"
	"github.com/banshee-data/walkthrough.report/internal/security"
	"github.com/banshee-data/walkthrough.report/internal/store"
	"github.com/banshee-data/walkthrough.report/internal/summary"
	"github.com/banshee-data/walkthrough.report/internal/tabular"
)

// Outputs lists the files Export wrote. An empty path means the output was
// disabled in the config.
type Outputs struct {
	Processed    string
	Summary      string
	DensityImage string
	Charts       string
}

// Export writes res to the output directory named in cfg. Each file gets
// a name that does not collide with anything already there, so repeated
// runs never overwrite earlier results.
func Export(fsys fsutil.FileSystem, res *Result, cfg *config.AnalysisConfig) (Outputs, error) {
	var out Outputs
	delim := cfg.Delimiter()

	var err error
	out.Processed, err = export(fsys, cfg.Output.Dir, cfg.Output.Processed, func(w io.Writer) error {
		return density.WriteProcessed(w, res.Field, delim)
	})
	if err != nil {
		return out, err
	}

	var keyColumns []string
	if cfg.Ingest.MultipleTrialsPerFile {
		keyColumns = cfg.Ingest.KeyColumns
	}
	table, err := summary.Table(res.Rows, keyColumns, res.Categories)
	if err != nil {
		return out, err
	}
	out.Summary, err = export(fsys, cfg.Output.Dir, cfg.Output.Summary, func(w io.Writer) error {
		return tabular.Write(w, table, delim)
	})
	if err != nil {
		return out, err
	}

	plane, err := report.ParsePlane(cfg.Output.Plane)
	if err != nil {
		return out, err
	}
	out.DensityImage, err = export(fsys, cfg.Output.Dir, cfg.Output.DensityImage, func(w io.Writer) error {
		return report.WriteDensityPNG(w, res.Field, plane, fmt.Sprintf("Trajectory density (%s)", plane))
	})
	if err != nil {
		return out, err
	}

	out.Charts, err = export(fsys, cfg.Output.Dir, cfg.Output.Charts, func(w io.Writer) error {
		return report.RenderSummaryHTML(w, res.Rows, res.Stats)
	})
	return out, err
}

// export writes one output file through write and returns its path. An
// empty name skips the output.
func export(fsys fsutil.FileSystem, dir, name string, write func(io.Writer) error) (path string, err error) {
	if name == "" {
		return "", nil
	}
	if err := security.ValidateFileName(name); err != nil {
		return "", err
	}
	path, err = tabular.UniqueFilename(fsys, dir, name)
	if err != nil {
		return "", err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	monitoring.Logf("wrote %s", path)
	return path, nil
}

// Store records res as a new run in db and returns the run ID. The run,
// its density points and its summary rows are written together or not at
// all.
func Store(db *store.DB, res *Result, cfg *config.AnalysisConfig) (string, error) {
	runID, err := db.SaveRun(store.Run{
		Created:      res.Started,
		ConfigJSON:   cfg.JSON(),
		Trajectories: res.Set.Len(),
		Samples:      res.Set.Samples(),
		GridPoints:   res.Field.GridPoints,
		QueryPoints:  res.Field.QueryPoints,
	}, res.Field, res.Rows)
	if err != nil {
		return "", err
	}
	monitoring.Logf("stored run %s: %d density points, %d summary rows", runID, len(res.Field.Points), len(res.Rows))
	return runID, nil
}
