package summary

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/walkthrough.report/internal/monitoring"
)

// Stats aggregates a set of rows. Means and standard deviations skip NaN
// values; a statistic with no finite input is NaN.
type Stats struct {
	Trials     int
	ValidPaths int
	Successes  int

	MeanDuration, StdDuration float64
	MeanDistance, StdDistance float64
	MeanSpeed, StdSpeed       float64
	MeanRatio, StdRatio       float64
}

// SuccessRate returns Successes over ValidPaths, or NaN without valid paths.
func (s Stats) SuccessRate() float64 {
	if s.ValidPaths == 0 {
		return math.NaN()
	}
	return float64(s.Successes) / float64(s.ValidPaths)
}

func finite(vals []float64) []float64 {
	out := vals[:0]
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func meanStd(vals []float64) (mean, std float64) {
	vals = finite(vals)
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}

// Aggregate computes Stats over rows.
func Aggregate(rows []Row) Stats {
	s := Stats{Trials: len(rows)}
	var dur, dist, speed, ratio []float64
	for _, r := range rows {
		dur = append(dur, r.Duration)
		dist = append(dist, r.Distance)
		speed = append(speed, r.AverageSpeed)
		if r.PathValid {
			s.ValidPaths++
			ratio = append(ratio, r.Ratio)
			if r.Successful {
				s.Successes++
			}
		}
	}
	s.MeanDuration, s.StdDuration = meanStd(dur)
	s.MeanDistance, s.StdDistance = meanStd(dist)
	s.MeanSpeed, s.StdSpeed = meanStd(speed)
	s.MeanRatio, s.StdRatio = meanStd(ratio)
	monitoring.Logf("summary: %d trials, %d with paths, %d successful; mean duration %.3f, mean distance %.3f",
		s.Trials, s.ValidPaths, s.Successes, s.MeanDuration, s.MeanDistance)
	return s
}
