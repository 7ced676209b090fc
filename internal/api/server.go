// Package api serves stored analysis runs over HTTP: run listings, summary
// rows as JSON, and the rendered density image and summary charts.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/walkthrough.report/internal/httputil"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/report"
	"github.com/banshee-data/walkthrough.report/internal/store"
	"github.com/banshee-data/walkthrough.report/internal/summary"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db *store.DB
}

func NewServer(db *store.DB) *Server {
	return &Server{db: db}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
	return mux
}

// runJSON is the listing form of a stored run.
type runJSON struct {
	ID           string          `json:"id"`
	Created      time.Time       `json:"created"`
	Trajectories int             `json:"trajectories"`
	Samples      int             `json:"samples"`
	GridPoints   int             `json:"grid_points"`
	QueryPoints  int             `json:"query_points"`
	Config       json.RawMessage `json:"config,omitempty"`
}

func toRunJSON(r store.Run, withConfig bool) runJSON {
	out := runJSON{
		ID:           r.ID,
		Created:      r.Created.UTC(),
		Trajectories: r.Trajectories,
		Samples:      r.Samples,
		GridPoints:   r.GridPoints,
		QueryPoints:  r.QueryPoints,
	}
	if withConfig && json.Valid([]byte(r.ConfigJSON)) {
		out.Config = json.RawMessage(r.ConfigJSON)
	}
	return out
}

// number is a float that encodes NaN and infinities as null.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type rowJSON struct {
	Key                  string            `json:"key"`
	Duration             number            `json:"duration"`
	Distance             number            `json:"distance"`
	AverageSpeed         number            `json:"average_speed"`
	DivisionByZero       bool              `json:"division_by_zero"`
	PathValid            bool              `json:"path_valid"`
	ShortestPathDistance number            `json:"shortest_path_distance"`
	Surplus              number            `json:"surplus"`
	Ratio                number            `json:"ratio"`
	Successful           bool              `json:"successful"`
	HitRatios            map[string]number `json:"hit_ratios,omitempty"`
}

type statsJSON struct {
	Trials       int    `json:"trials"`
	ValidPaths   int    `json:"valid_paths"`
	Successes    int    `json:"successes"`
	SuccessRate  number `json:"success_rate"`
	MeanDuration number `json:"mean_duration"`
	StdDuration  number `json:"std_duration"`
	MeanDistance number `json:"mean_distance"`
	StdDistance  number `json:"std_distance"`
	MeanSpeed    number `json:"mean_speed"`
	StdSpeed     number `json:"std_speed"`
	MeanRatio    number `json:"mean_ratio"`
	StdRatio     number `json:"std_ratio"`
}

func toRowJSON(r summary.Row) rowJSON {
	out := rowJSON{
		Key:                  r.Key,
		Duration:             number(r.Duration),
		Distance:             number(r.Distance),
		AverageSpeed:         number(r.AverageSpeed),
		DivisionByZero:       r.DivisionByZero,
		PathValid:            r.PathValid,
		ShortestPathDistance: number(r.ShortestPathDistance),
		Surplus:              number(r.Surplus),
		Ratio:                number(r.Ratio),
		Successful:           r.Successful,
	}
	if r.HitRatios != nil {
		out.HitRatios = make(map[string]number, len(r.HitRatios))
		for k, v := range r.HitRatios {
			out.HitRatios[k] = number(v)
		}
	}
	return out
}

func toStatsJSON(s summary.Stats) statsJSON {
	return statsJSON{
		Trials:       s.Trials,
		ValidPaths:   s.ValidPaths,
		Successes:    s.Successes,
		SuccessRate:  number(s.SuccessRate()),
		MeanDuration: number(s.MeanDuration),
		StdDuration:  number(s.StdDuration),
		MeanDistance: number(s.MeanDistance),
		StdDistance:  number(s.StdDistance),
		MeanSpeed:    number(s.MeanSpeed),
		StdSpeed:     number(s.StdSpeed),
		MeanRatio:    number(s.MeanRatio),
		StdRatio:     number(s.StdRatio),
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	runs, err := s.db.ListRuns()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve runs: %v", err))
		return
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run, false))
	}
	httputil.WriteJSONOK(w, out)
}

// handleRunByID handles GET /api/runs/:id and its sub-resources
// summary, density.png and charts.html.
func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
	if len(pathParts) > 2 || pathParts[0] == "" {
		httputil.NotFound(w, "unknown resource")
		return
	}
	run, err := s.db.GetRun(pathParts[0])
	if errors.Is(err, store.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve run: %v", err))
		return
	}

	resource := ""
	if len(pathParts) == 2 {
		resource = pathParts[1]
	}
	switch resource {
	case "":
		httputil.WriteJSONOK(w, toRunJSON(run, true))
	case "summary":
		s.showSummary(w, run)
	case "density.png":
		s.showDensity(w, r, run)
	case "charts.html":
		s.showCharts(w, run)
	default:
		httputil.NotFound(w, "unknown resource")
	}
}

func (s *Server) showSummary(w http.ResponseWriter, run store.Run) {
	rows, err := s.db.SummaryRows(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve summary: %v", err))
		return
	}
	out := struct {
		Rows  []rowJSON `json:"rows"`
		Stats statsJSON `json:"stats"`
	}{Rows: make([]rowJSON, 0, len(rows)), Stats: toStatsJSON(summary.Aggregate(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, toRowJSON(row))
	}
	httputil.WriteJSONOK(w, out)
}

func (s *Server) showDensity(w http.ResponseWriter, r *http.Request, run store.Run) {
	plane, err := report.ParsePlane(r.URL.Query().Get("plane"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	points, err := s.db.DensityPoints(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve density: %v", err))
		return
	}
	field := store.Field(points)
	title := fmt.Sprintf("Run %s (%s)", run.ID, plane)
	httputil.WriteRendered(w, "image/png", func(w io.Writer) error {
		return report.WriteDensityPNG(w, field, plane, title)
	})
}

func (s *Server) showCharts(w http.ResponseWriter, run store.Run) {
	rows, err := s.db.SummaryRows(run.ID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to retrieve summary: %v", err))
		return
	}
	stats := summary.Aggregate(rows)
	httputil.WriteRendered(w, "text/html; charset=utf-8", func(w io.Writer) error {
		return report.RenderSummaryHTML(w, rows, stats)
	})
}
