// Package trajectory turns raw walkthrough tables into validated,
// keyed trajectories.
//
// Responsibilities: configuration and schema validation, row filtering,
// locale-independent numeric parsing, orientation from direction columns
// or quaternions, and super-key construction when several trials share
// one file.
// Key types: Entry, Trajectory, Set, Config.
//
// A Set is produced once per run and is read-only afterwards; density
// estimation and summary statistics both consume it without mutation.
package trajectory
