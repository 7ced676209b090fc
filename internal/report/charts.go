package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/walkthrough.report/internal/summary"
)

// barValue maps undefined statistics to an empty bar; JSON has no NaN.
func barValue(v float64) opts.BarData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.BarData{Value: nil}
	}
	return opts.BarData{Value: math.Round(v*1000) / 1000}
}

func statText(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func newBar(title, subtitle string, keys []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Walkthrough summary", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)
	bar.SetXAxis(keys)
	return bar
}

// SummaryPage builds the chart page for rows: path lengths against their
// shortest paths, durations and speeds, and efficiency ratios.
func SummaryPage(rows []summary.Row, stats summary.Stats) *components.Page {
	keys := make([]string, len(rows))
	var distance, shortest, duration, speed, ratio []opts.BarData
	for i, r := range rows {
		keys[i] = r.Key
		distance = append(distance, barValue(r.Distance))
		shortest = append(shortest, barValue(r.ShortestPathDistance))
		duration = append(duration, barValue(r.Duration))
		speed = append(speed, barValue(r.AverageSpeed))
		ratio = append(ratio, barValue(r.Ratio))
	}

	paths := newBar("Path length",
		fmt.Sprintf("trials=%d valid paths=%d success rate=%s", stats.Trials, stats.ValidPaths, statText(stats.SuccessRate())),
		keys)
	paths.AddSeries("Distance", distance).
		AddSeries("ShortestPathDistance", shortest)

	timing := newBar("Timing",
		fmt.Sprintf("mean duration=%s mean speed=%s", statText(stats.MeanDuration), statText(stats.MeanSpeed)),
		keys)
	timing.AddSeries("Duration", duration).
		AddSeries("AverageSpeed", speed)

	efficiency := newBar("Shortest path ratio",
		fmt.Sprintf("mean=%s sd=%s", statText(stats.MeanRatio), statText(stats.StdRatio)),
		keys)
	efficiency.AddSeries("RatioShortestPath", ratio,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)

	page := components.NewPage()
	page.SetPageTitle("Walkthrough summary")
	page.AddCharts(paths, timing, efficiency)
	return page
}

// RenderSummaryHTML writes the summary chart page for rows to w.
func RenderSummaryHTML(w io.Writer, rows []summary.Row, stats summary.Stats) error {
	if err := SummaryPage(rows, stats).Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
