package ink

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package logger. Accessed atomically so SetLogger
// can race with logging from ReadRegion goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for ink and its sub-packages.
// By default ink produces no log output. Pass nil to restore silence.
//
// Log levels used by ink:
//   - [slog.LevelDebug]: geometry fallbacks, distance field window sizes
//   - [slog.LevelInfo]: backend selected, device recovered
//   - [slog.LevelWarn]: capability unavailable, device lost
//
// Engines created with WithLogger use their own logger instead.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the package logger. GPU probes and devices default to
// it until an engine hands them its own logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends and probes that accept a
// logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands l to v if v accepts a logger.
func propagateLogger(v any, l *slog.Logger) {
	if ls, ok := v.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
