// Package monitoring holds the process-wide diagnostic logging hooks shared
// by the clustering pipeline, the store and the HTTP surface.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// can be swapped out with SetLogger so binaries and tests can redirect or
// mute all pipeline logging in one place.
var Logf func(format string, v ...interface{}) = log.Printf

// Debug gates Debugf. Off by default; the daemon's -verbose flag turns it on.
var Debug bool

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Debugf logs through Logf only when Debug is set. Hot paths call this for
// per-run trace lines that would swamp normal logs.
func Debugf(format string, v ...interface{}) {
	if Debug {
		Logf(format, v...)
	}
}
