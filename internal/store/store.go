// Package store persists analysis runs, their density fields and their
// summary rows in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/walkthrough.report/internal/density"
	"github.com/banshee-data/walkthrough.report/internal/geom"
	"github.com/banshee-data/walkthrough.report/internal/summary"
)

// ErrRunNotFound is returned when a run ID has no row in runs.
var ErrRunNotFound = errors.New("run not found")

type DB struct {
	*sql.DB
}

// pragmas are applied by the driver to every pooled connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

func dsn(path string) string {
	q := make(url.Values)
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// Open opens the SQLite database at path with the connection pragmas set.
// It does not migrate; call MigrateUp before use.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &DB{db}, nil
}

// OpenAndMigrate opens path and brings its schema up to date with the
// embedded migrations.
func OpenAndMigrate(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Run describes one stored analysis.
type Run struct {
	ID           string
	Created      time.Time
	ConfigJSON   string
	Trajectories int
	Samples      int
	GridPoints   int
	QueryPoints  int
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// CreateRun stores run under a fresh ID, which it returns. A zero Created
// time is replaced with the current time.
func (db *DB) CreateRun(run Run) (string, error) {
	return insertRun(db, run)
}

func insertRun(ex execer, run Run) (string, error) {
	run.ID = uuid.NewString()
	if run.Created.IsZero() {
		run.Created = time.Now()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}
	_, err := ex.Exec(
		`INSERT INTO runs (run_id, created_unix_nanos, config_json, trajectories, samples, grid_points, query_points)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Created.UnixNano(), run.ConfigJSON,
		run.Trajectories, run.Samples, run.GridPoints, run.QueryPoints,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return run.ID, nil
}

// SaveRun stores run with its density field and summary rows in a single
// transaction and returns the new run ID. If any insert fails nothing is
// stored.
func (db *DB) SaveRun(run Run, field *density.Field, rows []summary.Row) (string, error) {
	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	runID, err := insertRun(tx, run)
	if err != nil {
		return "", err
	}
	if err := insertDensity(tx, runID, field); err != nil {
		return "", err
	}
	if err := insertSummary(tx, runID, rows); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", runID, err)
	}
	return runID, nil
}

// ListRuns returns every run, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, created_unix_nanos, config_json, trajectories, samples, grid_points, query_points
		FROM runs ORDER BY created_unix_nanos DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &created, &r.ConfigJSON, &r.Trajectories, &r.Samples, &r.GridPoints, &r.QueryPoints); err != nil {
			return nil, err
		}
		r.Created = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run stored under id.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	var created int64
	err := db.QueryRow(`SELECT run_id, created_unix_nanos, config_json, trajectories, samples, grid_points, query_points
		FROM runs WHERE run_id = ?`, id).
		Scan(&r.ID, &created, &r.ConfigJSON, &r.Trajectories, &r.Samples, &r.GridPoints, &r.QueryPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	r.Created = time.Unix(0, created)
	return r, nil
}

// InsertDensity stores field's points for runID in output order.
func (db *DB) InsertDensity(runID string, field *density.Field) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertDensity(tx, runID, field); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDensity(tx *sql.Tx, runID string, field *density.Field) error {
	stmt, err := tx.Prepare(`INSERT INTO density_points (run_id, seq, trajectory_key, x, y, z, density, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range field.Points {
		if _, err := stmt.Exec(runID, i, p.Key, p.Position.X, p.Position.Y, p.Position.Z, p.Density, p.Color.Hex()); err != nil {
			return fmt.Errorf("failed to insert density point %d: %w", i, err)
		}
	}
	return nil
}

// DensityPoints loads the density points of runID in output order.
func (db *DB) DensityPoints(runID string) ([]density.Point, error) {
	rows, err := db.Query(`SELECT trajectory_key, x, y, z, density, color
		FROM density_points WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []density.Point
	for rows.Next() {
		var p density.Point
		var hex string
		if err := rows.Scan(&p.Key, &p.Position.X, &p.Position.Y, &p.Position.Z, &p.Density, &hex); err != nil {
			return nil, err
		}
		if p.Color, err = density.ParseHexColor(hex); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// nullable maps NaN and infinities to NULL.
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeHitRatios stores NaN ratios as JSON null.
func encodeHitRatios(m map[string]float64) (interface{}, error) {
	if m == nil {
		return nil, nil
	}
	enc := make(map[string]*float64, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			enc[k] = nil
			continue
		}
		v := v
		enc[k] = &v
	}
	b, err := json.Marshal(enc)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func decodeHitRatios(s sql.NullString) (map[string]float64, error) {
	if !s.Valid {
		return nil, nil
	}
	var enc map[string]*float64
	if err := json.Unmarshal([]byte(s.String), &enc); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(enc))
	for k, v := range enc {
		if v == nil {
			out[k] = math.NaN()
			continue
		}
		out[k] = *v
	}
	return out, nil
}

// InsertSummary stores rows for runID in order. NaN statistics are
// stored as NULL.
func (db *DB) InsertSummary(runID string, rows []summary.Row) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertSummary(tx, runID, rows); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSummary(tx *sql.Tx, runID string, rows []summary.Row) error {
	stmt, err := tx.Prepare(`INSERT INTO summary_rows (run_id, seq, trajectory_key, duration, distance, average_speed,
		shortest_path_distance, surplus, ratio, path_valid, successful, hit_ratios_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rows {
		hits, err := encodeHitRatios(r.HitRatios)
		if err != nil {
			return fmt.Errorf("row %s: %w", r.Key, err)
		}
		_, err = stmt.Exec(runID, i, r.Key,
			nullable(r.Duration), nullable(r.Distance), nullable(r.AverageSpeed),
			nullable(r.ShortestPathDistance), nullable(r.Surplus), nullable(r.Ratio),
			boolInt(r.PathValid), boolInt(r.Successful), hits)
		if err != nil {
			return fmt.Errorf("failed to insert summary row %s: %w", r.Key, err)
		}
	}
	return nil
}

// SummaryRows loads the summary rows of runID in order. Endpoints are not
// stored and come back zero.
func (db *DB) SummaryRows(runID string) ([]summary.Row, error) {
	rows, err := db.Query(`SELECT trajectory_key, duration, distance, average_speed,
		shortest_path_distance, surplus, ratio, path_valid, successful, hit_ratios_json
		FROM summary_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []summary.Row
	for rows.Next() {
		var (
			r                        summary.Row
			dur, dist, speed         sql.NullFloat64
			shortest, surplus, ratio sql.NullFloat64
			pathValid, successful    int
			hits                     sql.NullString
		)
		if err := rows.Scan(&r.Key, &dur, &dist, &speed, &shortest, &surplus, &ratio, &pathValid, &successful, &hits); err != nil {
			return nil, err
		}
		r.Duration, r.Distance, r.AverageSpeed = fromNull(dur), fromNull(dist), fromNull(speed)
		r.ShortestPathDistance, r.Surplus, r.Ratio = fromNull(shortest), fromNull(surplus), fromNull(ratio)
		r.DivisionByZero = r.Duration == 0
		r.PathValid = pathValid != 0
		r.Successful = successful != 0
		if r.HitRatios, err = decodeHitRatios(hits); err != nil {
			return nil, fmt.Errorf("row %s: hit ratios: %w", r.Key, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Field rebuilds a density field from stored points, for rendering a past
// run. Bounds cover the points only and grid counts are left zero.
func Field(points []density.Point) *density.Field {
	f := &density.Field{Points: points, Retained: make(map[string]int)}
	for _, p := range points {
		f.Retained[p.Key]++
	}
	f.Bounds, _ = geom.Bounds(f.Positions())
	return f
}
