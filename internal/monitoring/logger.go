// Package monitoring holds the diagnostic logging hooks shared by the
// analysis packages.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger used by ingestion, density
// estimation and summary statistics. It defaults to log.Printf and may be
// replaced by SetLogger so tests can capture or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var verbose atomic.Bool

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose toggles Debugf output.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Debugf logs through Logf only when verbose output is enabled. Per-grid
// and per-row progress goes here so batch runs stay quiet by default.
func Debugf(format string, v ...interface{}) {
	if verbose.Load() {
		Logf("[debug] "+format, v...)
	}
}

// Verbose reports whether Debugf output is enabled.
func Verbose() bool {
	return verbose.Load()
}
