// SPDX-License-Identifier: Unlicense OR MIT

package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// nopHandler discards all records. Enabled returns false so disabled
// logging skips message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the library logger. Pass nil to silence logging
// again. Safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current library logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Criticalf reports a user error: incorrect API usage from which the
// library recovers by returning a neutral value.
func Criticalf(fn, format string, args ...any) {
	Logger().Error(fmt.Sprintf(format, args...), slog.String("func", fn))
}

// Fatalf reports an unrecoverable condition and terminates the process.
// Only reachable when the Gpu was configured with InitFlagExitOnError.
func Fatalf(fn, format string, args ...any) {
	Criticalf(fn, "A FATAL ERROR HAS OCCURED: "+format, args...)
	os.Exit(1)
}

// Debugf emits backend diagnostics.
func Debugf(format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...))
}
