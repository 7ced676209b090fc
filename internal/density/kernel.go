package density

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kernel is the Gaussian kernel exp(-|u|²/2): the standard trivariate
// normal density scaled by (2π)^(3/2) so that K(0) = 1. With the 1/n
// average in Evaluate every density lies in [0, 1], the domain of the
// color gradient and of the density threshold.
func Kernel(u r3.Vec) float64 {
	return math.Exp(-0.5 * r3.Norm2(u))
}

// Evaluate returns, for every query, the mean kernel value over samples
// with offsets scaled by 1/bandwidth:
//
//	density(q) = (1/n) Σ K((q - p_i) / bandwidth)
//
// An empty sample set yields zero densities.
func Evaluate(samples, queries []r3.Vec, bandwidth float64) []float64 {
	out := make([]float64, len(queries))
	if len(samples) == 0 {
		return out
	}
	inv := 1 / bandwidth
	n := float64(len(samples))
	for i, q := range queries {
		var sum float64
		for _, p := range samples {
			sum += Kernel(r3.Scale(inv, r3.Sub(q, p)))
		}
		out[i] = sum / n
	}
	return out
}
