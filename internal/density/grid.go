package density

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// Grid is a regular lattice of query points starting at Min. Along each
// axis it covers the half-open range [min, max): a span that is not a
// multiple of Spacing is truncated at the top, and max itself is never a
// grid coordinate.
type Grid struct {
	Min     r3.Vec
	Spacing float64
	// Counts holds the number of points along X, Y and Z.
	Counts [3]int
}

// NewGrid lays a grid over box at the given spacing. A box that is flat
// along any axis yields an empty grid. A box with a non-finite corner, or
// one so large relative to spacing that the point count cannot be held in
// an int, is a ConfigurationError.
func NewGrid(box r3.Box, spacing float64) (Grid, error) {
	g := Grid{Min: box.Min, Spacing: spacing}
	spans := [3][2]float64{
		{box.Min.X, box.Max.X},
		{box.Min.Y, box.Max.Y},
		{box.Min.Z, box.Max.Z},
	}
	total := 1
	for i, s := range spans {
		n, ok := axisCount(s[0], s[1], spacing)
		if !ok {
			return Grid{}, trajectory.NewConfigurationError("grid_spacing",
				"%v is unusable for the %c range [%v, %v]", spacing, "XYZ"[i], s[0], s[1])
		}
		if n > 0 && total > math.MaxInt/n {
			return Grid{}, trajectory.NewConfigurationError("grid_spacing",
				"%v over the sample bounds gives more grid points than can be counted", spacing)
		}
		g.Counts[i] = n
		total *= n
	}
	return g, nil
}

// axisCount is ceil((max-min)/spacing), trimmed so that no coordinate
// reaches max when floating point error rounds the quotient up. ok is
// false when the count is not a representable int.
func axisCount(min, max, spacing float64) (n int, ok bool) {
	if !finite(min) || !finite(max) {
		return 0, false
	}
	if !(max > min) || !(spacing > 0) {
		return 0, true
	}
	q := math.Ceil((max - min) / spacing)
	if !finite(q) || q >= math.MaxInt {
		return 0, false
	}
	n = int(q)
	for n > 0 && min+float64(n-1)*spacing >= max {
		n--
	}
	return n, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Len returns the total number of grid points.
func (g Grid) Len() int {
	return g.Counts[0] * g.Counts[1] * g.Counts[2]
}

// At returns the i-th point in X-major, then Y, then Z order.
func (g Grid) At(i int) r3.Vec {
	nz := g.Counts[2]
	ny := g.Counts[1]
	iz := i % nz
	iy := (i / nz) % ny
	ix := i / (nz * ny)
	return r3.Vec{
		X: g.Min.X + float64(ix)*g.Spacing,
		Y: g.Min.Y + float64(iy)*g.Spacing,
		Z: g.Min.Z + float64(iz)*g.Spacing,
	}
}

// Points materialises every grid point in At order.
func (g Grid) Points() []r3.Vec {
	n := g.Len()
	out := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		out[i] = g.At(i)
	}
	return out
}
