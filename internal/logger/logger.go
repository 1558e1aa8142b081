// Package logger provides the process-wide structured logger for portion.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	current *slog.Logger
	mu      sync.RWMutex
)

func init() {
	current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// Options configures the logger.
type Options struct {
	Debug  bool         // Enable debug level logging
	Quiet  bool         // Only show errors; wins over Debug
	JSON   bool         // Emit JSON records instead of text
	Output io.Writer    // Destination (default: stderr)
	Logger *slog.Logger // Use this logger as-is, ignoring the other fields
}

// Init replaces the process logger according to opts.
func Init(opts Options) {
	l := opts.Logger
	if l == nil {
		l = build(opts)
	}

	mu.Lock()
	defer mu.Unlock()
	current = l
}

// SetLogger installs a caller-provided logger.
func SetLogger(l *slog.Logger) {
	Init(Options{Logger: l})
}

func build(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: level(opts)}

	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

func level(opts Options) slog.Level {
	switch {
	case opts.Quiet:
		return slog.LevelError
	case opts.Debug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a child logger carrying args on every record.
func With(args ...any) *slog.Logger { return get().With(args...) }

// DebugContext logs at debug level with ctx.
func DebugContext(ctx context.Context, msg string, args ...any) {
	get().DebugContext(ctx, msg, args...)
}

// InfoContext logs at info level with ctx.
func InfoContext(ctx context.Context, msg string, args ...any) {
	get().InfoContext(ctx, msg, args...)
}

// WarnContext logs at warn level with ctx.
func WarnContext(ctx context.Context, msg string, args ...any) {
	get().WarnContext(ctx, msg, args...)
}

// ErrorContext logs at error level with ctx.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	get().ErrorContext(ctx, msg, args...)
}
