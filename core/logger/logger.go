package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu       sync.RWMutex
	instance = newLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
)

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init replaces the process logger. Safe to call more than once.
func Init(w io.Writer, level string) {
	mu.Lock()
	defer mu.Unlock()
	instance = newLogger(w, level)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// With returns a child logger carrying the given key/value pairs.
func With(keyvals ...any) *slog.Logger {
	return get().With(keyvals...)
}

func Debug(msg string, keyvals ...any) {
	get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	get().Error(msg, keyvals...)
}
