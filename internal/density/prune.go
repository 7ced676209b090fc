package density

import (
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/geom"
)

// minChunk keeps goroutine overhead small relative to the distance work.
const minChunk = 256

// Prune keeps the grid points whose nearest sample lies strictly closer
// than bandwidth. A point exactly bandwidth away is dropped; a point
// coinciding with a sample is kept.
//
// The grid is split into chunks that are scanned concurrently by up to
// workers goroutines. Each chunk fills its own slot and slots are joined
// after all chunks finish, so workers <= 1 and any larger value return
// the same points.
func Prune(grid Grid, positions []r3.Vec, bandwidth float64, workers int) ([]r3.Vec, error) {
	n := grid.Len()
	if n <= 0 || len(positions) == 0 {
		return nil, nil
	}
	if workers < 2 {
		return pruneRange(grid, positions, bandwidth, 0, n), nil
	}

	chunk := (n + workers*4 - 1) / (workers * 4)
	if chunk < minChunk {
		chunk = minChunk
	}
	slots := make([][]r3.Vec, (n+chunk-1)/chunk)

	var g errgroup.Group
	g.SetLimit(workers)
	for c := range slots {
		lo := c * chunk
		hi := min(lo+chunk, n)
		g.Go(func() error {
			slots[c] = pruneRange(grid, positions, bandwidth, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	out := make([]r3.Vec, 0, total)
	for _, s := range slots {
		out = append(out, s...)
	}
	return out, nil
}

func pruneRange(grid Grid, positions []r3.Vec, bandwidth float64, lo, hi int) []r3.Vec {
	var kept []r3.Vec
	for i := lo; i < hi; i++ {
		q := grid.At(i)
		if withinBandwidth(q, positions, bandwidth) {
			kept = append(kept, q)
		}
	}
	return kept
}

// withinBandwidth reports whether the minimum distance from q to any
// position is below bandwidth. It stops at the first close sample, which
// decides the comparison the same way the full minimum would.
func withinBandwidth(q r3.Vec, positions []r3.Vec, bandwidth float64) bool {
	for _, p := range positions {
		if geom.Distance(q, p) < bandwidth {
			return true
		}
	}
	return false
}
