// Package logging provides the diagnostic-logging seam the forwarding
// engine and its collaborators depend on, so tests can substitute a
// recording logger without touching the standard log package's global
// state.
package logging

import "log"

// Logger is the minimal diagnostic sink every component in this module
// depends on instead of calling the standard log package directly.
type Logger interface {
	Printf(format string, v ...any)
}

// StdLogger implements Logger on top of the standard library's log
// package.
type StdLogger struct{}

// NewStdLogger returns a Logger backed by log.Printf.
func NewStdLogger() Logger {
	return StdLogger{}
}

func (StdLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}
