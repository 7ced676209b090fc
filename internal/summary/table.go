package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/walkthrough.report/internal/tabular"
	"github.com/banshee-data/walkthrough.report/internal/trajectory"
)

// TrialIDColumn heads the identifier column when keys are file names.
const TrialIDColumn = "TrialID"

// MetricColumns are the fixed statistic columns, in output order.
var MetricColumns = []string{
	"Duration",
	"Distance",
	"AverageSpeed",
	"ShortestPathDistance",
	"SurplusShortestPath",
	"RatioShortestPath",
	"Successful",
}

// Precision is the number of decimals written per statistic.
const Precision = 3

func formatStat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'f', Precision, 64)
	// Values that round to zero print unsigned.
	if v < 0 && strings.Trim(s, "-0.") == "" {
		s = s[1:]
	}
	return s
}

// Table lays rows out for writing. With keyColumns the identifier cells are
// the super key values in keyColumns order; otherwise the key itself goes
// under TrialID. One column per category follows the metrics.
func Table(rows []Row, keyColumns, categories []string) (tabular.Table, error) {
	var t tabular.Table
	if len(keyColumns) > 0 {
		t.Columns = append(t.Columns, keyColumns...)
	} else {
		t.Columns = append(t.Columns, TrialIDColumn)
	}
	t.Columns = append(t.Columns, MetricColumns...)
	t.Columns = append(t.Columns, categories...)

	for _, r := range rows {
		cells := make([]string, 0, len(t.Columns))
		if len(keyColumns) > 0 {
			cols, values, err := trajectory.DeconstructKey(r.Key)
			if err != nil {
				return tabular.Table{}, err
			}
			if len(cols) != len(keyColumns) {
				return tabular.Table{}, fmt.Errorf("key %q has %d columns, want %d", r.Key, len(cols), len(keyColumns))
			}
			for i, c := range cols {
				if c != keyColumns[i] {
					return tabular.Table{}, fmt.Errorf("key %q: column %d is %q, want %q", r.Key, i, c, keyColumns[i])
				}
			}
			cells = append(cells, values...)
		} else {
			cells = append(cells, r.Key)
		}

		success := math.NaN()
		if r.PathValid {
			success = 0
			if r.Successful {
				success = 1
			}
		}
		for _, v := range []float64{r.Duration, r.Distance, r.AverageSpeed,
			r.ShortestPathDistance, r.Surplus, r.Ratio, success} {
			cells = append(cells, formatStat(v))
		}

		for _, c := range categories {
			if r.HitRatios == nil {
				cells = append(cells, NotComputed)
				continue
			}
			cells = append(cells, formatStat(r.HitRatios[c]))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
