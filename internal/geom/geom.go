// Package geom holds the small amount of 3D math shared by ingestion,
// density estimation and summary statistics. Vectors are gonum r3.Vec
// values; this package adds distance, quaternion axes and bounds.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Canonical pose axes of an unrotated sample.
var (
	Forward = r3.Vec{X: 0, Y: 0, Z: 1}
	Up      = r3.Vec{X: 0, Y: 1, Z: 0}
	Right   = r3.Vec{X: 1, Y: 0, Z: 0}
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// PathLength sums the segment lengths of a polyline. Fewer than two
// points give zero.
func PathLength(points []r3.Vec) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// Quaternion is an orientation in (w, x, y, z) order as recorded in the
// raw columns. Unit length is the caller's responsibility.
type Quaternion struct {
	W, X, Y, Z float64
}

// Rotate applies q v q* to v.
func (q Quaternion) Rotate(v r3.Vec) r3.Vec {
	rot := r3.Rotation(quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z})
	return rot.Rotate(v)
}

// Axes returns the forward, up and right vectors of the rotated canonical frame.
func (q Quaternion) Axes() (forward, up, right r3.Vec) {
	return q.Rotate(Forward), q.Rotate(Up), q.Rotate(Right)
}

// Bounds returns the axis-aligned bounding box of points. ok is false
// for an empty slice.
func Bounds(points []r3.Vec) (box r3.Box, ok bool) {
	if len(points) == 0 {
		return r3.Box{}, false
	}
	box.Min = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	box.Max = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range points {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Min.Z = math.Min(box.Min.Z, p.Z)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
		box.Max.Z = math.Max(box.Max.Z, p.Z)
	}
	return box, true
}

// Contains reports whether p lies in box, boundaries included.
func Contains(box r3.Box, p r3.Vec) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X &&
		p.Y >= box.Min.Y && p.Y <= box.Max.Y &&
		p.Z >= box.Min.Z && p.Z <= box.Max.Z
}
