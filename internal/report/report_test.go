package report

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/walkthrough.report/internal/density"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/summary"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestParsePlane(t *testing.T) {
	tests := []struct {
		in   string
		want Plane
		ok   bool
	}{
		{"", PlaneXZ, true},
		{"xz", PlaneXZ, true},
		{"xy", PlaneXY, true},
		{"zy", PlaneZY, true},
		{"yx", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePlane(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("ParsePlane(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePlane(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaneProjection(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	x, y := PlaneXZ.project(v)
	assert.Equal(t, [2]float64{1, 3}, [2]float64{x, y})
	x, y = PlaneXY.project(v)
	assert.Equal(t, [2]float64{1, 2}, [2]float64{x, y})
	x, y = PlaneZY.project(v)
	assert.Equal(t, [2]float64{3, 2}, [2]float64{x, y})
}

func testField() *density.Field {
	return &density.Field{Points: []density.Point{
		{Key: "a", Position: r3.Vec{X: 0, Z: 0}, Density: 0.9, Color: density.RGBA{R: 1, A: 0.9}},
		{Key: "a", Position: r3.Vec{X: 1, Z: 1}, Density: 0.4, Color: density.RGBA{R: 1, A: 0.4}},
		{Key: "b", Position: r3.Vec{X: 2, Z: 0}, Density: 0.2, Color: density.RGBA{B: 1, A: 0.2}},
	}}
}

func TestWriteDensityPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDensityPNG(&buf, testField(), PlaneXZ, "density"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, int(DensityImageWidth/vg.Inch*vgimg.DefaultDPI), b.Dx())
	assert.Equal(t, int(DensityImageHeight/vg.Inch*vgimg.DefaultDPI), b.Dy())
}

func TestWriteDensityPNGEmptyField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDensityPNG(&buf, &density.Field{}, PlaneXY, "empty"))
	_, err := png.Decode(&buf)
	assert.NoError(t, err)
}

func TestDensityPlotUsesPointColors(t *testing.T) {
	field := testField()
	p, err := DensityPlot(field, PlaneXZ, "colors")
	require.NoError(t, err)
	assert.Equal(t, "colors", p.Title.Text)
	assert.Equal(t, "X", p.X.Label.Text)
	assert.Equal(t, "Z", p.Y.Label.Text)
	assert.InDelta(t, 0, p.X.Min, 1e-12)
	assert.InDelta(t, 2, p.X.Max, 1e-12)
}

func TestRenderSummaryHTMLHandlesNaN(t *testing.T) {
	rows := []summary.Row{
		{Key: "trial_one", Duration: 3, Distance: 10, AverageSpeed: 10.0 / 3,
			PathValid: true, ShortestPathDistance: 8, Surplus: 2, Ratio: 1.25, Successful: true},
		{Key: "trial_two", AverageSpeed: math.NaN(),
			ShortestPathDistance: math.NaN(), Surplus: math.NaN(), Ratio: math.NaN()},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderSummaryHTML(&buf, rows, summary.Aggregate(rows)))

	html := buf.String()
	assert.True(t, strings.Contains(html, "trial_one"))
	assert.True(t, strings.Contains(html, "trial_two"))
	assert.Contains(t, html, "RatioShortestPath")
	assert.Contains(t, html, "Walkthrough summary")
	assert.Contains(t, html, "3.333")
}

func TestBarValue(t *testing.T) {
	assert.Nil(t, barValue(math.NaN()).Value)
	assert.Nil(t, barValue(math.Inf(1)).Value)
	assert.Equal(t, 1.235, barValue(1.23456).Value)
	assert.Equal(t, "n/a", statText(math.NaN()))
	assert.Equal(t, "2.500", statText(2.5))
}
