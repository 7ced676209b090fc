package density

import (
	"runtime"

	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// DefaultDensityThreshold drops query points whose density is at or below it.
const DefaultDensityThreshold = 0.1

// Params configures an estimate.
type Params struct {
	// GridSpacing is the distance between neighbouring query points.
	GridSpacing float64
	// Bandwidth is the Gaussian kernel scale and the pruning radius.
	Bandwidth float64
	// DensityThreshold is exclusive: only densities above it are kept.
	DensityThreshold float64
	// Workers bounds pruning parallelism; values below 2 run sequentially.
	Workers int
}

// DefaultParams returns unit spacing and bandwidth, the default threshold
// and one pruning worker per available CPU.
func DefaultParams() Params {
	return Params{
		GridSpacing:      1,
		Bandwidth:        1,
		DensityThreshold: DefaultDensityThreshold,
		Workers:          runtime.GOMAXPROCS(0),
	}
}

// Validate rejects non-positive spacing or bandwidth.
func (p Params) Validate() error {
	if !(p.GridSpacing > 0) {
		return trajectory.NewConfigurationError("grid_spacing", "must be positive, got %v", p.GridSpacing)
	}
	if !(p.Bandwidth > 0) {
		return trajectory.NewConfigurationError("bandwidth", "must be positive, got %v", p.Bandwidth)
	}
	return nil
}
