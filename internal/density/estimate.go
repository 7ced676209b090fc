package density

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/geom"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// Point is one retained query point of one trajectory.
type Point struct {
	Key      string
	Position r3.Vec
	Density  float64
	Color    RGBA
}

// Field is the thresholded density field of a trajectory set. Points are
// grouped by trajectory in set order and, within a trajectory, follow the
// order in which query points survived pruning.
type Field struct {
	Points []Point

	// Bounds is the bounding box of every sample; zero for an empty set.
	Bounds r3.Box
	// GridPoints and QueryPoints count the grid before and after pruning.
	GridPoints  int
	QueryPoints int
	// Retained counts points per trajectory key.
	Retained map[string]int
}

// Positions returns the retained point positions in output order.
func (f *Field) Positions() []r3.Vec {
	out := make([]r3.Vec, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Position
	}
	return out
}

// Colors returns the retained point colors in output order.
func (f *Field) Colors() []RGBA {
	out := make([]RGBA, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Color
	}
	return out
}

// Estimate computes the density field of set. Trajectory i is colored
// with baseColors[i % len(baseColors)]. Invalid parameters are rejected
// before any computation; an empty set yields an empty field.
//
// Densities come from the unit-peak Kernel, not the normalised Gaussian
// density: each value is (2π)^(3/2) ≈ 15.75 times what a standard
// Gaussian KDE would report for the same samples and bandwidth, and
// DensityThreshold is compared on this scale.
func Estimate(set *trajectory.Set, baseColors []RGBA, p Params) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(baseColors) == 0 {
		return nil, trajectory.NewConfigurationError("colors", "at least one base color is required")
	}

	field := &Field{Retained: make(map[string]int)}
	positions := set.Positions()
	box, ok := geom.Bounds(positions)
	if !ok {
		return field, nil
	}
	field.Bounds = box

	grid, err := NewGrid(box, p.GridSpacing)
	if err != nil {
		return nil, err
	}
	field.GridPoints = grid.Len()
	monitoring.Logf("density: %d query points before filtering (%dx%dx%d)",
		grid.Len(), grid.Counts[0], grid.Counts[1], grid.Counts[2])

	queries, err := Prune(grid, positions, p.Bandwidth, p.Workers)
	if err != nil {
		return nil, err
	}
	field.QueryPoints = len(queries)
	monitoring.Logf("density: %d query points after filtering", len(queries))

	set.Each(func(i int, key string, t trajectory.Trajectory) {
		densities := Evaluate(t.Positions(), queries, p.Bandwidth)
		gradient := NewGradient(baseColors[i%len(baseColors)])
		kept := 0
		for j, d := range densities {
			if d <= p.DensityThreshold {
				continue
			}
			field.Points = append(field.Points, Point{
				Key:      key,
				Position: queries[j],
				Density:  d,
				Color:    gradient.Evaluate(d),
			})
			kept++
		}
		field.Retained[key] = kept
		monitoring.Debugf("density: %s retained %d of %d query points", key, kept, len(queries))
	})
	return field, nil
}
