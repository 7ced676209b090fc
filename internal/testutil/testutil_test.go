package testutil

import (
	"strings"
	"testing"
)

func TestWalk(t *testing.T) {
	got := Walk(0, 0, 0, 4, 2, 0, 2, 4)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0] != (Sample{}) {
		t.Errorf("first = %+v, want origin at t=0", got[0])
	}
	if want := (Sample{T: 2, X: 4, Y: 2}); got[4] != want {
		t.Errorf("last = %+v, want %+v", got[4], want)
	}
	if want := (Sample{T: 1, X: 2, Y: 1}); got[2] != want {
		t.Errorf("middle = %+v, want %+v", got[2], want)
	}
}

func TestRecorderCSV(t *testing.T) {
	csv := RecorderCSV([]Sample{{T: 0.5, X: 1, Y: 2, Z: 3}}, map[string]string{"Participant": "p1"}, "Participant")
	lines := strings.Split(strings.TrimSuffix(csv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], ";RightZ;Participant") {
		t.Errorf("header = %q", lines[0])
	}
	if want := "0.5;1;2;3;0;0;1;0;1;0;1;0;0;p1"; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestAssertStatusCode(t *testing.T) {
	fakeT := &testing.T{}
	AssertStatusCode(fakeT, 200, 200)
	if fakeT.Failed() {
		t.Error("expected no failure for matching status codes")
	}
}

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}
