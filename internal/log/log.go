// Package log provides leveled structured logging for ccflags.
//
// Verbosity follows the kubectl -v=N convention (see levels.go). Everything
// is written to stderr unless SetOutput redirects it.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	logger    atomic.Pointer[slog.Logger]
	level     = new(slog.LevelVar)
	verbosity atomic.Int32

	mu     sync.Mutex
	output io.Writer = os.Stderr
	format           = "text"
)

func init() {
	level.Set(slog.LevelWarn)
	verbosity.Store(VerbosityWarn)
	rebuild()
}

// rebuild swaps in a logger for the current output and format.
func rebuild() {
	mu.Lock()
	l := slog.New(newHandler(output, format, level))
	mu.Unlock()
	logger.Store(l)
}

// Init configures verbosity and format. Call once at startup.
func Init(v int, logFormat string) {
	SetVerbosity(v)
	mu.Lock()
	if logFormat != "" {
		format = logFormat
	}
	mu.Unlock()
	rebuild()
	slog.SetDefault(logger.Load())
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	if w == nil {
		w = os.Stderr
	}
	output = w
	mu.Unlock()
	rebuild()
}

// SetVerbosity changes verbosity at runtime.
func SetVerbosity(v int) {
	verbosity.Store(int32(v))
	level.Set(VerbosityToLevel(v))
}

// Verbosity returns the current verbosity level.
func Verbosity() int {
	return int(verbosity.Load())
}

// Trace logs at LevelTrace (v=4).
func Trace(msg string, args ...any) {
	logger.Load().Log(context.Background(), LevelTrace, msg, args...)
}

// V returns a logger that only logs if verbosity >= v.
//
//	log.V(3).Info("lookup", "file", name)
func V(v int) *slog.Logger {
	if int(verbosity.Load()) >= v {
		return logger.Load()
	}
	return slog.New(slog.DiscardHandler)
}

// Component returns a logger tagged with a component name.
func Component(name string) *slog.Logger {
	return logger.Load().With("component", name)
}
