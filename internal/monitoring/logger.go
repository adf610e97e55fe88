// Package monitoring holds the process-wide log streams used by the
// locomotion packages.
//
// Three streams are kept apart so a simulation can run with per-frame
// tracing switched off:
//   - ops:   actionable warnings, errors, lifecycle events
//   - diag:  per-decision diagnostics (snaps, forced descents)
//   - trace: per-frame telemetry (catalog sizes, positions)
package monitoring

import (
	"io"
	"log"
	"os"
	"sync"
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu          sync.RWMutex
	opsLogger   = newLogger(os.Stderr)
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream.
func SetLogWriters(w LogWriters) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger(w.Ops)
	diagLogger = newLogger(w.Diag)
	traceLogger = newLogger(w.Trace)
}

// newLogger creates a *log.Logger for a given writer, or returns nil if w is nil.
func newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, "[ledge] ", log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream.
func Opsf(format string, args ...interface{}) {
	logTo(&opsLogger, format, args...)
}

// Diagf logs to the diag stream.
func Diagf(format string, args ...interface{}) {
	logTo(&diagLogger, format, args...)
}

// Tracef logs to the trace stream.
func Tracef(format string, args ...interface{}) {
	logTo(&traceLogger, format, args...)
}

// TraceEnabled reports whether the trace stream has a writer, so callers can
// skip building expensive trace arguments.
func TraceEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return traceLogger != nil
}

func logTo(l **log.Logger, format string, args ...interface{}) {
	mu.RLock()
	logger := *l
	mu.RUnlock()
	if logger != nil {
		logger.Printf(format, args...)
	}
}
