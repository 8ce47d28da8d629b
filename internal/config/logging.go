package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a logger writing JSON to logFile and, when console is
// non-nil, text to console. The TUI passes a nil console so log lines never
// land on the screen. Returns the logger and a cleanup function that closes
// the file.
func SetupLogger(logFile string, console io.Writer, level slog.Level) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	var handlers []slog.Handler
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}

	file, err := openLogFile(logFile)
	if err != nil {
		if console == nil {
			return slog.New(slog.DiscardHandler), func() error { return nil }
		}
		// Fall back to the console if the file fails
		slog.New(handlers[0]).Warn("failed to open log file, using console only", "error", err, "file", logFile)
		return slog.New(handlers[0]), func() error { return nil }
	}
	handlers = append(handlers, slog.NewJSONHandler(file, opts))

	return slog.New(slogmulti.Fanout(handlers...)), file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // log path is user configuration
}
