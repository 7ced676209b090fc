package density

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ProcessedPrecision is the number of decimals written per value.
const ProcessedPrecision = 3

// Sample is one line of a processed density file.
type Sample struct {
	Position r3.Vec
	Density  float64
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', ProcessedPrecision, 64)
}

// WriteProcessed writes one "x<d>y<d>z<d>density" line per retained point
// in field order. There is no header row.
func WriteProcessed(w io.Writer, field *Field, delim rune) error {
	bw := bufio.NewWriter(w)
	sep := string(delim)
	for _, p := range field.Points {
		line := formatValue(p.Position.X) + sep +
			formatValue(p.Position.Y) + sep +
			formatValue(p.Position.Z) + sep +
			formatValue(p.Density) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadProcessed loads a file written by WriteProcessed.
func ReadProcessed(r io.Reader, delim rune) ([]Sample, error) {
	var out []Sample
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, string(delim))
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: want 4 fields, got %d", line, len(fields))
		}
		var vals [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: field %d: %w", line, i+1, err)
			}
			vals[i] = v
		}
		out = append(out, Sample{Position: r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}, Density: vals[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
