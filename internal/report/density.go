// Package report renders analysis results for people: a PNG projection of
// the density field and an HTML page of summary charts.
package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/walkthrough.report/internal/density"
)

// Plane selects the two axes a density field is projected onto.
type Plane string

const (
	// PlaneXZ is the floor plan view looking down the up axis.
	PlaneXZ Plane = "xz"
	PlaneXY Plane = "xy"
	PlaneZY Plane = "zy"
)

// ParsePlane accepts "xz", "xy" or "zy". Empty means PlaneXZ.
func ParsePlane(s string) (Plane, error) {
	switch p := Plane(s); p {
	case "":
		return PlaneXZ, nil
	case PlaneXZ, PlaneXY, PlaneZY:
		return p, nil
	}
	return "", fmt.Errorf("unknown projection plane %q", s)
}

func (p Plane) project(v r3.Vec) (x, y float64) {
	switch p {
	case PlaneXY:
		return v.X, v.Y
	case PlaneZY:
		return v.Z, v.Y
	default:
		return v.X, v.Z
	}
}

func (p Plane) labels() (x, y string) {
	switch p {
	case PlaneXY:
		return "X", "Y"
	case PlaneZY:
		return "Z", "Y"
	default:
		return "X", "Z"
	}
}

// Image size of the density projection.
const (
	DensityImageWidth  = 8 * vg.Inch
	DensityImageHeight = 8 * vg.Inch
)

// DensityPlot projects field onto plane as a scatter plot. Each point is
// drawn with its own gradient color, so overlapping trajectories blend.
func DensityPlot(field *density.Field, plane Plane, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text, p.Y.Label.Text = plane.labels()

	if len(field.Points) == 0 {
		return p, nil
	}

	pts := make(plotter.XYs, len(field.Points))
	for i, pt := range field.Points {
		pts[i].X, pts[i].Y = plane.project(pt.Position)
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build density scatter: %w", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  field.Points[i].Color,
			Radius: vg.Points(3),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(scatter)
	return p, nil
}

// WriteDensityPNG renders field projected onto plane as a PNG image.
func WriteDensityPNG(w io.Writer, field *density.Field, plane Plane, title string) error {
	p, err := DensityPlot(field, plane, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(DensityImageWidth, DensityImageHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write density png: %w", err)
	}
	return nil
}
