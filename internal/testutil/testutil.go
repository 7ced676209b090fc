// Package testutil provides shared test utilities and fixtures.
//
// The fixtures build recorder tables in the default column layout so that
// pipeline and HTTP tests can start from raw text without repeating the
// header in every file.
package testutil

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

// RecorderHeader is the default direction-vector column layout.
var RecorderHeader = []string{
	"Time", "PositionX", "PositionY", "PositionZ",
	"DirectionX", "DirectionY", "DirectionZ",
	"UpX", "UpY", "UpZ",
	"RightX", "RightY", "RightZ",
}

// Sample is one recorded pose: a time and a position. The orientation is
// fixed to facing +Z with +Y up.
type Sample struct {
	T, X, Y, Z float64
}

// Walk returns n+1 samples moving linearly from (x0, y0, z0) to (x1, y1, z1)
// over duration seconds.
func Walk(x0, y0, z0, x1, y1, z1, duration float64, n int) []Sample {
	out := make([]Sample, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		out[i] = Sample{
			T: f * duration,
			X: x0 + f*(x1-x0),
			Y: y0 + f*(y1-y0),
			Z: z0 + f*(z1-z0),
		}
	}
	return out
}

// RecorderCSV renders samples as a ';' delimited recorder table. Extra
// columns, if any, are appended after the pose columns with the same
// values on every row.
func RecorderCSV(samples []Sample, extra map[string]string, extraOrder ...string) string {
	var b strings.Builder
	header := append([]string(nil), RecorderHeader...)
	header = append(header, extraOrder...)
	b.WriteString(strings.Join(header, ";"))
	b.WriteByte('\n')
	for _, s := range samples {
		fmt.Fprintf(&b, "%g;%g;%g;%g;0;0;1;0;1;0;1;0;0", s.T, s.X, s.Y, s.Z)
		for _, col := range extraOrder {
			b.WriteByte(';')
			b.WriteString(extra[col])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d (%s), want %d", got, http.StatusText(got), want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
