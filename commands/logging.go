package commands

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// newLogger configures slog based on the verbose flag and installs it as
// the default logger.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// viewerLogger sends log output to path while the TUI owns the terminal.
// An empty path discards it.
func viewerLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	if path == "" {
		return newLogger(io.Discard, verbose), func() {}, nil
	}

	logFile, err := tea.LogToFile(path, "word2vec3d")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(logFile, verbose), func() { _ = logFile.Close() }, nil
}
