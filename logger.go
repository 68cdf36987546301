package labelkit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

var (
	sinksMu sync.RWMutex
	sinks   []func(*slog.Logger)
)

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for labelkit and all its sub-packages.
// By default, labelkit produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by labelkit:
//   - [slog.LevelDebug]: per-operation diagnostics (snapping, zoom, exports)
//   - [slog.LevelInfo]: lifecycle events (scene loaded, server started)
//   - [slog.LevelWarn]: constraint warnings and recoverable failures
//
// Example:
//
//	labelkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.RLock()
	defer sinksMu.RUnlock()
	for _, fn := range sinks {
		fn(l)
	}
}

// Logger returns the current logger. Sub-packages call this to share the
// same logger configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// RegisterLoggerSink forwards the current logger, and every later one
// passed to SetLogger, to fn. Backends use it to hand the logger to the
// libraries they wrap.
func RegisterLoggerSink(fn func(*slog.Logger)) {
	sinksMu.Lock()
	sinks = append(sinks, fn)
	sinksMu.Unlock()
	fn(Logger())
}
