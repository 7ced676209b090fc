// Package tabular reads and writes the delimiter-separated tables used for
// raw walkthrough recordings and for the processed/summary outputs.
//
// Columns are addressed by name, so extra columns and any column order
// are tolerated; every data row must have as many fields as the header.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/walkthrough.report/internal/fsutil"
)

// DefaultDelimiter separates fields when no delimiter is configured.
const DefaultDelimiter = ';'

// Table is a header row plus data rows of raw string values.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnCountError reports a row whose width differs from the header.
type ColumnCountError struct {
	Line int
	Got  int
	Want int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("line %d has %d fields, header has %d", e.Line, e.Got, e.Want)
}

// Index returns the position of column name, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Read parses a header line followed by data rows. Blank lines are skipped.
func Read(r io.Reader, delim rune) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("missing header row")
		}
		return Table{}, fmt.Errorf("failed to read header: %w", err)
	}
	t := Table{Columns: header}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				return Table{}, &ColumnCountError{Line: perr.Line, Got: len(row), Want: len(header)}
			}
			return Table{}, fmt.Errorf("failed to read row: %w", err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write emits the header then every row. Rows must match the header width.
func Write(w io.Writer, t Table, delim rune) error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return &ColumnCountError{Line: i + 2, Got: len(row), Want: len(t.Columns)}
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := writeRecord(cw, w, t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writeRecord(cw, w, row); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// writeRecord writes a lone empty field as "" so that it is not read back
// as a blank line.
func writeRecord(cw *csv.Writer, w io.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// ReadFile reads a table from path on fsys.
func ReadFile(fsys fsutil.FileSystem, path string, delim rune) (Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	t, err := Read(f, delim)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile writes a table to path on fsys, truncating any existing file.
func WriteFile(fsys fsutil.FileSystem, path string, t Table, delim rune) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, t, delim)
}

// ParseDelimiter turns a configured delimiter string into a rune. An empty
// string selects DefaultDelimiter.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return DefaultDelimiter, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 || strings.ContainsAny(s, "\"\r\n") {
		return 0, fmt.Errorf("delimiter must be a single character other than quote or newline, got %q", s)
	}
	return runes[0], nil
}
