package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	rows := []Row{
		{Duration: 2, Distance: 4, AverageSpeed: 2, PathValid: true, Ratio: 1, Successful: true},
		{Duration: 4, Distance: 8, AverageSpeed: 2, PathValid: true, Ratio: 2},
		{Duration: 0, Distance: 0, AverageSpeed: math.NaN(), Ratio: math.NaN()},
	}
	s := Aggregate(rows)

	assert.Equal(t, 3, s.Trials)
	assert.Equal(t, 2, s.ValidPaths)
	assert.Equal(t, 1, s.Successes)
	assert.InDelta(t, 0.5, s.SuccessRate(), 1e-12)
	assert.InDelta(t, 2, s.MeanDuration, 1e-12)
	assert.InDelta(t, 2, s.StdDuration, 1e-12)
	assert.InDelta(t, 4, s.MeanDistance, 1e-12)
	assert.InDelta(t, 2, s.MeanSpeed, 1e-12)
	assert.InDelta(t, 0, s.StdSpeed, 1e-12)
	assert.InDelta(t, 1.5, s.MeanRatio, 1e-12)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.Trials)
	assert.True(t, math.IsNaN(s.MeanDuration))
	assert.True(t, math.IsNaN(s.SuccessRate()))
}
