package summary

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrPathNotFound is returned by a ShortestPathProvider when the endpoints
// cannot be snapped or are not connected.
var ErrPathNotFound = errors.New("shortest path not found")

// ShortestPathProvider snaps start and end onto a navigable surface, within
// snapTolerance of each, and returns the shortest polyline between the
// snapped points. The first and last polyline points are the snapped
// endpoints.
type ShortestPathProvider interface {
	FindPath(start, end r3.Vec, snapTolerance float64) ([]r3.Vec, error)
}

// StraightLine treats all of space as navigable: every point snaps to
// itself and the shortest path is the segment between the endpoints.
type StraightLine struct{}

// FindPath implements ShortestPathProvider.
func (StraightLine) FindPath(start, end r3.Vec, _ float64) ([]r3.Vec, error) {
	return []r3.Vec{start, end}, nil
}
