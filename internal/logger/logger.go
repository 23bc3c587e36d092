package logger

import (
	"context"
	"log/slog"
	"os"
)

var (
	globalLogger *slog.Logger
	errorLogger  *slog.Logger
	verboseMode  bool
)

// Init initializes the global logger. In verbose mode everything down to
// debug level is written to stderr; otherwise only errors are emitted.
func Init(verbose bool) {
	verboseMode = verbose

	errorLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	if verbose {
		globalLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		globalLogger = slog.New(&discardHandler{})
	}
	slog.SetDefault(globalLogger)
}

// discardHandler drops all records when verbose mode is disabled
type discardHandler struct{}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool { return false }
func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}
func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *discardHandler) WithGroup(_ string) slog.Handler      { return h }

func ensureInit() {
	if globalLogger == nil {
		Init(false)
	}
}

// Debug logs debug messages only in verbose mode
func Debug(msg string, args ...any) {
	ensureInit()
	globalLogger.Debug(msg, args...)
}

// Info logs info messages only in verbose mode
func Info(msg string, args ...any) {
	ensureInit()
	globalLogger.Info(msg, args...)
}

// Warn logs warning messages only in verbose mode
func Warn(msg string, args ...any) {
	ensureInit()
	globalLogger.Warn(msg, args...)
}

// Error always logs error messages regardless of verbose mode
func Error(msg string, args ...any) {
	ensureInit()
	errorLogger.Error(msg, args...)
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verboseMode
}
