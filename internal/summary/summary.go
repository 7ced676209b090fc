// Package summary computes per-trajectory walkthrough statistics: timing,
// path length, efficiency against a shortest path, goal success and
// optional attention hit ratios.
package summary

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/geom"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

const (
	// DefaultSuccessRadius is the distance from the goal under which a
	// trial counts as successful.
	DefaultSuccessRadius = 2.0
	// DefaultSnapTolerance bounds how far an endpoint may move when it is
	// snapped onto the navigable surface.
	DefaultSnapTolerance = 100.0
)

// EndpointPolicy fixes the start or end of every trial. A nil field is
// inferred from the trajectory's first or last sample.
type EndpointPolicy struct {
	Start *r3.Vec
	End   *r3.Vec
}

func (p EndpointPolicy) resolve(t trajectory.Trajectory) (start, end r3.Vec) {
	start, end = t[0].Position, t[len(t)-1].Position
	if p.Start != nil {
		start = *p.Start
	}
	if p.End != nil {
		end = *p.End
	}
	return start, end
}

// Options configures Summarize.
type Options struct {
	Endpoints     EndpointPolicy
	SuccessRadius float64
	SnapTolerance float64
	// Categories names the attention hit categories, in output column order.
	Categories []string
}

// DefaultOptions infers both endpoints and uses the default radius and
// snap tolerance with no hit categories.
func DefaultOptions() Options {
	return Options{
		SuccessRadius: DefaultSuccessRadius,
		SnapTolerance: DefaultSnapTolerance,
	}
}

// Row holds the statistics of one trajectory. Float fields that cannot be
// computed are NaN.
type Row struct {
	Key string

	Duration     float64
	Distance     float64
	AverageSpeed float64
	// DivisionByZero is set when Duration is zero and AverageSpeed is NaN.
	DivisionByZero bool

	// Start and End are the endpoints after snapping. They are the
	// unsnapped endpoints when no path was found.
	Start r3.Vec
	End   r3.Vec

	// PathValid is false when no shortest path was found; the path
	// dependent fields are then NaN and Successful is false.
	PathValid            bool
	ShortestPathDistance float64
	Surplus              float64
	Ratio                float64
	Successful           bool

	// HitRatios maps category to its share of the trial's hits. Nil when no
	// hit counts were supplied.
	HitRatios map[string]float64
}

// Summarize computes one Row per trajectory in set order. paths may be nil,
// in which case StraightLine is used. hits may be nil when no attention
// analysis ran.
func Summarize(set *trajectory.Set, opts Options, paths ShortestPathProvider, hits HitProvider) []Row {
	if paths == nil {
		paths = StraightLine{}
	}
	rows := make([]Row, 0, set.Len())
	set.Each(func(_ int, key string, t trajectory.Trajectory) {
		rows = append(rows, summarizeOne(key, t, opts, paths, hits))
	})
	return rows
}

func summarizeOne(key string, t trajectory.Trajectory, opts Options, paths ShortestPathProvider, hits HitProvider) Row {
	first, last := t[0], t[len(t)-1]
	row := Row{
		Key:      key,
		Duration: last.Timestamp - first.Timestamp,
		Distance: geom.PathLength(t.Positions()),
	}
	if row.Duration == 0 {
		row.AverageSpeed = math.NaN()
		row.DivisionByZero = true
		monitoring.Logf("summary: %s has zero duration; average speed is undefined", key)
	} else {
		row.AverageSpeed = row.Distance / row.Duration
	}

	row.Start, row.End = opts.Endpoints.resolve(t)
	polyline, err := paths.FindPath(row.Start, row.End, opts.SnapTolerance)
	if err == nil && len(polyline) == 0 {
		err = ErrPathNotFound
	}
	if err != nil {
		if !errors.Is(err, ErrPathNotFound) {
			monitoring.Logf("summary: %s: path lookup failed: %v", key, err)
		} else {
			monitoring.Logf("summary: %s: no shortest path between %v and %v", key, row.Start, row.End)
		}
		row.ShortestPathDistance = math.NaN()
		row.Surplus = math.NaN()
		row.Ratio = math.NaN()
	} else {
		row.PathValid = true
		row.Start, row.End = polyline[0], polyline[len(polyline)-1]
		row.ShortestPathDistance = geom.PathLength(polyline)
		row.Surplus = row.Distance - row.ShortestPathDistance
		if row.ShortestPathDistance == 0 {
			row.Ratio = math.NaN()
		} else {
			row.Ratio = row.Distance / row.ShortestPathDistance
		}
		row.Successful = geom.Distance(last.Position, row.End) < opts.SuccessRadius
	}

	if hits != nil {
		row.HitRatios = hits.Ratios(key, opts.Categories)
	}
	return row
}
