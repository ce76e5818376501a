package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the log file created inside the configured log directory.
const FileName = "refactorizer.log"

// Logger appends structured lines to <dir>/refactorizer.log. The terminal is
// owned by the UI, so nothing is ever written to stderr.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New opens (or reuses) the log file in dir.
func New(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{Logger: newSlog(f, level), file: f}, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: newSlog(io.Discard, "error")}
}

func newSlog(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
