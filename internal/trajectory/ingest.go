package trajectory

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/geom"
	"github.com/banshee-data/walkthrough.report/internal/monitoring"
	"github.com/banshee-data/walkthrough.report/internal/tabular"
)

// Source is one raw table and the file name (or id) it came from.
type Source struct {
	Name  string
	Table tabular.Table
}

// Ingest parses a single table. source names the trajectory when the
// configuration is single-trial-per-file.
func Ingest(t tabular.Table, cfg Config, source string) (*Set, error) {
	return IngestAll([]Source{{Name: source, Table: t}}, cfg)
}

// IngestAll parses every source in order into one Set. Keys keep the
// order in which they are first seen across all sources. Any schema or
// value error aborts the whole batch.
func IngestAll(sources []Source, cfg Config) (*Set, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set := NewSet()
	for _, src := range sources {
		kept, err := ingestTable(set, src, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
		monitoring.Debugf("ingested %s: %d of %d rows kept", src.Name, kept, len(src.Table.Rows))
	}
	monitoring.Logf("ingested %d trajectories (%d samples) from %d source(s)", set.Len(), set.Samples(), len(sources))
	return set, nil
}

// rowReader resolves bound column names to indices once per table.
type rowReader struct {
	cfg     Config
	index   map[string]int
	filters []compiledFilter
}

type compiledFilter struct {
	col     int
	allowed map[string]struct{}
}

func newRowReader(t tabular.Table, cfg Config) (*rowReader, error) {
	index := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	for _, col := range cfg.requiredColumns() {
		if _, ok := index[col]; !ok {
			return nil, &MissingColumnError{Column: col, Available: append([]string(nil), t.Columns...)}
		}
	}

	r := &rowReader{cfg: cfg, index: index}
	for _, f := range cfg.Filters {
		cf := compiledFilter{col: index[f.Column], allowed: make(map[string]struct{}, len(f.Allowed))}
		for _, v := range f.Allowed {
			cf.allowed[v] = struct{}{}
		}
		r.filters = append(r.filters, cf)
	}
	return r, nil
}

func (r *rowReader) keep(row []string) bool {
	for _, f := range r.filters {
		if _, ok := f.allowed[row[f.col]]; !ok {
			return false
		}
	}
	return true
}

func (r *rowReader) float(row []string, rowNum int, col string) (float64, error) {
	raw := row[r.index[col]]
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &MalformedValueError{Column: col, Value: raw, Row: rowNum}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MalformedValueError{Column: col, Value: raw, Row: rowNum, Reason: "not a finite number"}
	}
	return v, nil
}

func (r *rowReader) vec(row []string, rowNum int, x, y, z string) (r3.Vec, error) {
	var v r3.Vec
	var err error
	if v.X, err = r.float(row, rowNum, x); err != nil {
		return r3.Vec{}, err
	}
	if v.Y, err = r.float(row, rowNum, y); err != nil {
		return r3.Vec{}, err
	}
	if v.Z, err = r.float(row, rowNum, z); err != nil {
		return r3.Vec{}, err
	}
	return v, nil
}

func (r *rowReader) entry(row []string, rowNum int) (Entry, error) {
	b := r.cfg.Columns
	var e Entry
	var err error

	if e.Timestamp, err = r.float(row, rowNum, b.Time); err != nil {
		return Entry{}, err
	}
	if e.Position, err = r.vec(row, rowNum, b.PositionX, b.PositionY, b.PositionZ); err != nil {
		return Entry{}, err
	}

	if r.cfg.UseQuaternion {
		var q geom.Quaternion
		if q.W, err = r.float(row, rowNum, b.QuaternionW); err != nil {
			return Entry{}, err
		}
		if q.X, err = r.float(row, rowNum, b.QuaternionX); err != nil {
			return Entry{}, err
		}
		if q.Y, err = r.float(row, rowNum, b.QuaternionY); err != nil {
			return Entry{}, err
		}
		if q.Z, err = r.float(row, rowNum, b.QuaternionZ); err != nil {
			return Entry{}, err
		}
		e.Forward, e.Up, e.Right = q.Axes()
		return e, nil
	}

	if e.Forward, err = r.vec(row, rowNum, b.DirectionX, b.DirectionY, b.DirectionZ); err != nil {
		return Entry{}, err
	}
	if e.Up, err = r.vec(row, rowNum, b.UpX, b.UpY, b.UpZ); err != nil {
		return Entry{}, err
	}
	if e.Right, err = r.vec(row, rowNum, b.RightX, b.RightY, b.RightZ); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (r *rowReader) key(row []string, rowNum int, source string) (string, error) {
	if !r.cfg.MultipleTrialsPerFile {
		return filepath.Base(source), nil
	}
	values := make([]string, len(r.cfg.KeyColumns))
	for i, col := range r.cfg.KeyColumns {
		v := row[r.index[col]]
		if strings.Contains(v, KeySeparator) {
			return "", &MalformedValueError{Column: col, Value: v, Row: rowNum,
				Reason: "key values cannot contain " + KeySeparator}
		}
		values[i] = v
	}
	return ConstructKey(r.cfg.KeyColumns, values), nil
}

func ingestTable(set *Set, src Source, cfg Config) (int, error) {
	r, err := newRowReader(src.Table, cfg)
	if err != nil {
		return 0, err
	}

	kept := 0
	for i, row := range src.Table.Rows {
		rowNum := i + 1
		if len(row) != len(src.Table.Columns) {
			return kept, &tabular.ColumnCountError{Line: rowNum + 1, Got: len(row), Want: len(src.Table.Columns)}
		}
		if !r.keep(row) {
			continue
		}
		e, err := r.entry(row, rowNum)
		if err != nil {
			return kept, err
		}
		key, err := r.key(row, rowNum, src.Name)
		if err != nil {
			return kept, err
		}
		set.append(key, e)
		kept++
	}
	return kept, nil
}
