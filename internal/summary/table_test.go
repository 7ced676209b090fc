package summary

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/walkthrough.report/internal/tabular"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

func TestTableTrialIDLayout(t *testing.T) {
	rows := []Row{
		{
			Key: "p1.csv", Duration: 3, Distance: 10, AverageSpeed: 10.0 / 3,
			PathValid: true, ShortestPathDistance: 8, Surplus: 2, Ratio: 1.25, Successful: true,
		},
		{
			Key: "p2.csv", Duration: 0, Distance: 0, AverageSpeed: math.NaN(), DivisionByZero: true,
			ShortestPathDistance: math.NaN(), Surplus: math.NaN(), Ratio: math.NaN(),
		},
	}
	got, err := Table(rows, nil, []string{"wall"})
	require.NoError(t, err)

	want := tabular.Table{
		Columns: []string{"TrialID", "Duration", "Distance", "AverageSpeed", "ShortestPathDistance",
			"SurplusShortestPath", "RatioShortestPath", "Successful", "wall"},
		Rows: [][]string{
			{"p1.csv", "3.000", "10.000", "3.333", "8.000", "2.000", "1.250", "1.000", "not computed"},
			{"p2.csv", "0.000", "0.000", "NaN", "NaN", "NaN", "NaN", "NaN", "not computed"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
}

func TestTableSuperKeyColumns(t *testing.T) {
	key := trajectory.ConstructKey([]string{"Participant", "Trial"}, []string{"7", "2"})
	rows := []Row{{
		Key: key, Duration: 1, Distance: 1, AverageSpeed: 1,
		PathValid: true, ShortestPathDistance: 2, Surplus: -1, Ratio: 0.5,
		HitRatios: map[string]float64{"a": 0.5, "b": math.NaN()},
	}}
	got, err := Table(rows, []string{"Participant", "Trial"}, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Participant", "Trial"}, got.Columns[:2])
	assert.Equal(t, []string{"7", "2", "1.000", "1.000", "1.000", "2.000", "-1.000", "0.500", "0.000", "0.500", "NaN"}, got.Rows[0])
}

func TestTableRejectsMismatchedKeys(t *testing.T) {
	_, err := Table([]Row{{Key: "plain.csv"}}, []string{"Participant"}, nil)
	assert.Error(t, err)

	_, err = Table([]Row{{Key: "Trial=1"}}, []string{"Participant"}, nil)
	assert.Error(t, err)
}

func TestLoadHits(t *testing.T) {
	table := tabular.Table{
		Columns: []string{"hits", "key", "category"},
		Rows: [][]string{
			{"2", "a", "wall"},
			{"1", "a", "sign"},
			{" 3", "a", "wall"},
			{"4", "b", "door"},
		},
	}
	hits, cats, err := LoadHits(table)
	require.NoError(t, err)
	assert.Equal(t, HitProvider{"a": {"wall": 5, "sign": 1}, "b": {"door": 4}}, hits)
	assert.Equal(t, []string{"wall", "sign", "door"}, cats)
}

func TestLoadHitsErrors(t *testing.T) {
	_, _, err := LoadHits(tabular.Table{Columns: []string{"key", "hits"}})
	assert.ErrorIs(t, err, trajectory.ErrMissingColumn)

	_, _, err = LoadHits(tabular.Table{
		Columns: []string{"key", "category", "hits"},
		Rows:    [][]string{{"a", "wall", "-1"}},
	})
	assert.ErrorIs(t, err, trajectory.ErrMalformedValue)
}

func TestFormatStat(t *testing.T) {
	tests := map[float64]string{
		1.23456:     "1.235",
		-1.5:        "-1.500",
		-1e-16:      "0.000",
		-0.0004:     "0.000",
		-0.0006:     "-0.001",
		math.Inf(1): "NaN",
	}
	for v, want := range tests {
		if got := formatStat(v); got != want {
			t.Errorf("formatStat(%v) = %q, want %q", v, got, want)
		}
	}
}
