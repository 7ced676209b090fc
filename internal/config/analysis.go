package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/walkthrough.report/internal/density"
	"github.com/banshee-data/walkthrough.report/internal/fsutil"
	"github.com/banshee-data/walkthrough.report/internal/summary"
	"github.com/banshee-data/walkthrough.report/internal/tabular"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// AnalysisConfig is the root of an analysis config file. Every section
// starts from its defaults; a file only needs the values it changes.
type AnalysisConfig struct {
	Ingest  IngestConfig  `json:"ingest" yaml:"ingest"`
	Density DensityConfig `json:"density" yaml:"density"`
	Summary SummaryConfig `json:"summary" yaml:"summary"`
	Output  OutputConfig  `json:"output" yaml:"output"`
}

// IngestConfig controls how input tables become trajectories.
type IngestConfig struct {
	UseQuaternion          bool                      `json:"use_quaternion" yaml:"use_quaternion"`
	MultipleTrialsPerFile  bool                      `json:"multiple_trials_per_file" yaml:"multiple_trials_per_file"`
	UseAllFilesInDirectory bool                      `json:"use_all_files_in_directory" yaml:"use_all_files_in_directory"`
	KeyColumns             []string                  `json:"key_columns" yaml:"key_columns" validate:"dive,required"`
	Filters                []trajectory.Filter       `json:"filters" yaml:"filters"`
	Columns                trajectory.ColumnBindings `json:"columns" yaml:"columns"`
	// Delimiter is a single character or the escape \t.
	Delimiter string `json:"delimiter" yaml:"delimiter" validate:"required,max=2"`
	// Pattern selects input files in directory mode.
	Pattern string `json:"pattern" yaml:"pattern" validate:"required"`
}

// DensityConfig configures the density estimate.
type DensityConfig struct {
	GridSpacing      float64 `json:"grid_spacing" yaml:"grid_spacing" validate:"gt=0"`
	Bandwidth        float64 `json:"bandwidth" yaml:"bandwidth" validate:"gt=0"`
	DensityThreshold float64 `json:"density_threshold" yaml:"density_threshold" validate:"gte=0"`
	// Workers bounds pruning parallelism; 0 uses every CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
	// Colors are cycled across trajectories in key order.
	Colors []string `json:"colors" yaml:"colors" validate:"min=1,dive,hexcolor"`
}

// Vec3 is a point given in a config file.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// SummaryConfig configures the summary statistics.
type SummaryConfig struct {
	SuccessRadius float64 `json:"success_radius" yaml:"success_radius" validate:"gt=0"`
	SnapTolerance float64 `json:"snap_tolerance" yaml:"snap_tolerance" validate:"gte=0"`
	// Start and End fix the trial endpoints; nil infers them per trajectory.
	Start      *Vec3    `json:"start,omitempty" yaml:"start,omitempty"`
	End        *Vec3    `json:"end,omitempty" yaml:"end,omitempty"`
	Categories []string `json:"categories" yaml:"categories" validate:"dive,required"`
	// Graph is an optional waypoint graph file for shortest paths.
	Graph string `json:"graph,omitempty" yaml:"graph,omitempty"`
	// Hits is an optional key;category;hits table from an attention analysis.
	Hits string `json:"hits,omitempty" yaml:"hits,omitempty"`
}

// OutputConfig names the files an analysis writes. Names are made unique
// within Dir; an empty name skips that output.
type OutputConfig struct {
	Dir          string `json:"dir" yaml:"dir" validate:"required"`
	Processed    string `json:"processed" yaml:"processed"`
	Summary      string `json:"summary" yaml:"summary"`
	DensityImage string `json:"density_image" yaml:"density_image"`
	Charts       string `json:"charts" yaml:"charts"`
	Plane        string `json:"plane" yaml:"plane" validate:"oneof=xz xy zy"`
}

// DefaultColors is the trajectory palette used when none is configured.
var DefaultColors = []string{"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4", "#46f0f0"}

// DefaultAnalysisConfig returns the configuration used for any value a
// config file leaves out.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Ingest: IngestConfig{
			Columns:   trajectory.DefaultColumnBindings(),
			Delimiter: string(tabular.DefaultDelimiter),
			Pattern:   "*.csv",
		},
		Density: DensityConfig{
			GridSpacing:      1,
			Bandwidth:        1,
			DensityThreshold: density.DefaultDensityThreshold,
			Colors:           append([]string(nil), DefaultColors...),
		},
		Summary: SummaryConfig{
			SuccessRadius: summary.DefaultSuccessRadius,
			SnapTolerance: summary.DefaultSnapTolerance,
		},
		Output: OutputConfig{
			Dir:          "output",
			Processed:    "processed.csv",
			Summary:      "summary.csv",
			DensityImage: "density.png",
			Charts:       "summary.html",
			Plane:        "xz",
		},
	}
}

// LoadAnalysisConfig reads a .json, .yaml or .yml config file over the
// defaults and validates the result.
func LoadAnalysisConfig(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	f, err := fsys.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config file too large: more than %d bytes", maxFileSize)
	}

	cfg := DefaultAnalysisConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config file names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges and option combinations. Every failure is
// a *trajectory.ConfigurationError naming the offending option.
func (c *AnalysisConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			option := fe.Namespace()
			if _, rest, ok := strings.Cut(option, "."); ok {
				option = rest
			}
			reason := "failed " + fe.Tag()
			if fe.Param() != "" {
				reason += "=" + fe.Param()
			}
			return trajectory.NewConfigurationError(option, "%s (got %v)", reason, fe.Value())
		}
		return err
	}
	if err := c.TrajectoryConfig().Validate(); err != nil {
		return err
	}
	if _, err := tabular.ParseDelimiter(c.Ingest.Delimiter); err != nil {
		return trajectory.NewConfigurationError("ingest.delimiter", "%v", err)
	}
	if _, err := c.BaseColors(); err != nil {
		return err
	}
	return nil
}

// TrajectoryConfig returns the ingestion settings.
func (c *AnalysisConfig) TrajectoryConfig() trajectory.Config {
	return trajectory.Config{
		UseQuaternion:          c.Ingest.UseQuaternion,
		MultipleTrialsPerFile:  c.Ingest.MultipleTrialsPerFile,
		UseAllFilesInDirectory: c.Ingest.UseAllFilesInDirectory,
		KeyColumns:             append([]string(nil), c.Ingest.KeyColumns...),
		Filters:                append([]trajectory.Filter(nil), c.Ingest.Filters...),
		Columns:                c.Ingest.Columns,
	}
}

// Delimiter returns the parsed input and output delimiter.
func (c *AnalysisConfig) Delimiter() rune {
	d, err := tabular.ParseDelimiter(c.Ingest.Delimiter)
	if err != nil {
		return tabular.DefaultDelimiter
	}
	return d
}

// DensityParams returns the estimator parameters. Zero workers means one
// per available CPU.
func (c *AnalysisConfig) DensityParams() density.Params {
	workers := c.Density.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return density.Params{
		GridSpacing:      c.Density.GridSpacing,
		Bandwidth:        c.Density.Bandwidth,
		DensityThreshold: c.Density.DensityThreshold,
		Workers:          workers,
	}
}

// BaseColors parses the configured palette.
func (c *AnalysisConfig) BaseColors() ([]density.RGBA, error) {
	if len(c.Density.Colors) == 0 {
		return nil, trajectory.NewConfigurationError("density.colors", "at least one color is required")
	}
	out := make([]density.RGBA, len(c.Density.Colors))
	for i, s := range c.Density.Colors {
		col, err := density.ParseHexColor(s)
		if err != nil {
			return nil, trajectory.NewConfigurationError("density.colors", "%v", err)
		}
		out[i] = col
	}
	return out, nil
}

func (v *Vec3) vec() *r3.Vec {
	if v == nil {
		return nil
	}
	return &r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// SummaryOptions returns the summary settings.
func (c *AnalysisConfig) SummaryOptions() summary.Options {
	return summary.Options{
		Endpoints: summary.EndpointPolicy{
			Start: c.Summary.Start.vec(),
			End:   c.Summary.End.vec(),
		},
		SuccessRadius: c.Summary.SuccessRadius,
		SnapTolerance: c.Summary.SnapTolerance,
		Categories:    append([]string(nil), c.Summary.Categories...),
	}
}

// JSON returns the effective configuration as indented JSON, for storing
// alongside results.
func (c *AnalysisConfig) JSON() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
