package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/density"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/store"
	"github.com/banshee-data/walkthrough.report/internal/summary"
	"github.com/banshee-data/walkthrough.report/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func setupServer(t *testing.T) (*http.ServeMux, string) {
	t.Helper()
	db, err := store.OpenAndMigrate(filepath.Join(t.TempDir(), "results.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { db.Close() })

	runID, err := db.CreateRun(store.Run{
		Created:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		ConfigJSON:   `{"density":{"bandwidth":1}}`,
		Trajectories: 2,
		Samples:      26,
	})
	testutil.AssertNoError(t, err)

	field := &density.Field{Points: []density.Point{
		{Key: "a.csv", Position: r3.Vec{X: 0, Y: 0, Z: 0}, Density: 0.5, Color: density.RGBA{R: 1, A: 0.5}},
		{Key: "b.csv", Position: r3.Vec{X: 2, Y: 1, Z: 3}, Density: 0.8, Color: density.RGBA{B: 1, A: 0.8}},
	}}
	testutil.AssertNoError(t, db.InsertDensity(runID, field))

	rows := []summary.Row{
		{Key: "a.csv", Duration: 2, Distance: 4, AverageSpeed: 2, PathValid: true,
			ShortestPathDistance: 4, Surplus: 0, Ratio: 1, Successful: true,
			HitRatios: map[string]float64{"exhibit": 0.5}},
		{Key: "b.csv", Duration: 0, Distance: 0, AverageSpeed: math.NaN(), DivisionByZero: true,
			ShortestPathDistance: math.NaN(), Surplus: math.NaN(), Ratio: math.NaN(),
			HitRatios: map[string]float64{"exhibit": math.NaN()}},
	}
	testutil.AssertNoError(t, db.InsertSummary(runID, rows))

	return NewServer(db).ServeMux(), runID
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestListRuns(t *testing.T) {
	mux, runID := setupServer(t)

	w := get(mux, "/api/runs")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var runs []runJSON
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != runID {
		t.Errorf("Expected run %s, got %s", runID, runs[0].ID)
	}
	if runs[0].Config != nil {
		t.Errorf("Listing should omit config, got %s", runs[0].Config)
	}
	if runs[0].Samples != 26 {
		t.Errorf("Expected 26 samples, got %d", runs[0].Samples)
	}
}

func TestGetRun(t *testing.T) {
	mux, runID := setupServer(t)

	w := get(mux, "/api/runs/"+runID)
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var run runJSON
	if err := json.NewDecoder(w.Body).Decode(&run); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if string(run.Config) != `{"density":{"bandwidth":1}}` {
		t.Errorf("Unexpected config %s", run.Config)
	}
	if !run.Created.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected created time %v", run.Created)
	}
}

func TestRunSummary(t *testing.T) {
	mux, runID := setupServer(t)

	w := get(mux, "/api/runs/"+runID+"/summary")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)

	var resp struct {
		Rows  []map[string]interface{} `json:"rows"`
		Stats map[string]interface{}   `json:"stats"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0]["average_speed"] != 2.0 {
		t.Errorf("average_speed = %v, want 2", resp.Rows[0]["average_speed"])
	}
	if resp.Rows[1]["average_speed"] != nil {
		t.Errorf("NaN average_speed should encode as null, got %v", resp.Rows[1]["average_speed"])
	}
	if resp.Rows[1]["division_by_zero"] != true {
		t.Errorf("division_by_zero = %v, want true", resp.Rows[1]["division_by_zero"])
	}
	hits, ok := resp.Rows[1]["hit_ratios"].(map[string]interface{})
	if !ok || hits["exhibit"] != nil {
		t.Errorf("NaN hit ratio should encode as null, got %v", resp.Rows[1]["hit_ratios"])
	}
	if resp.Stats["trials"] != 2.0 || resp.Stats["valid_paths"] != 1.0 {
		t.Errorf("Unexpected stats %v", resp.Stats)
	}
	if resp.Stats["success_rate"] != 1.0 {
		t.Errorf("success_rate = %v, want 1", resp.Stats["success_rate"])
	}
}

func TestRunDensityImage(t *testing.T) {
	mux, runID := setupServer(t)

	w := get(mux, "/api/runs/"+runID+"/density.png?plane=xy")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %s, want image/png", ct)
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("Response is not a PNG: %v", err)
	}

	w = get(mux, "/api/runs/"+runID+"/density.png?plane=yx")
	testutil.AssertStatusCode(t, w.Code, http.StatusBadRequest)
}

func TestRunCharts(t *testing.T) {
	mux, runID := setupServer(t)

	w := get(mux, "/api/runs/"+runID+"/charts.html")
	testutil.AssertStatusCode(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "a.csv") || !strings.Contains(body, "b.csv") {
		t.Errorf("Charts should name every trial")
	}
}

func TestRunErrors(t *testing.T) {
	mux, runID := setupServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown run", "GET", "/api/runs/missing", http.StatusNotFound},
		{"unknown run resource", "GET", "/api/runs/missing/summary", http.StatusNotFound},
		{"unknown resource", "GET", "/api/runs/" + runID + "/other", http.StatusNotFound},
		{"nested too deep", "GET", "/api/runs/" + runID + "/summary/x", http.StatusNotFound},
		{"empty id", "GET", "/api/runs/", http.StatusNotFound},
		{"post list", "POST", "/api/runs", http.StatusMethodNotAllowed},
		{"delete run", "DELETE", "/api/runs/" + runID, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			testutil.AssertStatusCode(t, w.Code, tt.want)
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, format)
	})
	defer monitoring.SetLogger(nil)

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := get(h, "/api/runs")
	testutil.AssertStatusCode(t, w.Code, http.StatusTeapot)
	if len(logged) != 1 {
		t.Errorf("Expected one log line, got %d", len(logged))
	}
}

func TestStatusCodeColor(t *testing.T) {
	if got := statusCodeColor(200); got != colorBoldGreen+"200"+colorReset {
		t.Errorf("statusCodeColor(200) = %q", got)
	}
	if got := statusCodeColor(404); got != colorBoldRed+"404"+colorReset {
		t.Errorf("statusCodeColor(404) = %q", got)
	}
	if got := statusCodeColor(100); got != "100" {
		t.Errorf("statusCodeColor(100) = %q", got)
	}
}
