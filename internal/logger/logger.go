// Package logger provides process-wide levelled logging for shiftsheet.
//
// Messages are printf-style. Debug output is suppressed unless verbose mode
// is enabled with SetVerbose, which the CLI does for the --verbose flag.
package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Sugar()
}

// SetVerbose enables or disables debug output.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetOutput redirects log output. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w)
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug logs a message only in verbose mode.
func Debug(format string, args ...any) {
	get().Debugf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	get().Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	get().Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	get().Errorf(format, args...)
}

// Sync flushes buffered log entries.
func Sync() error {
	return get().Sync()
}
