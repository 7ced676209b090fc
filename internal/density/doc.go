// Package density estimates where walkthrough trajectories concentrate in
// space.
//
// Pipeline: bounding box of all samples, regular query grid over the box
// (half-open per axis), distance pruning against every sample, per-
// trajectory Gaussian kernel density at the surviving points, threshold,
// and a transparent-to-opaque color per retained point.
//
// Pruning is the only parallel stage. It is read-only over the grid and
// the sample positions and produces the same set of points for any
// worker count, including one.
package density
