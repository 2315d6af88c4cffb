// Package logging provides the process-wide structured logger.
// When a project is found, records are appended as JSON to .tasklog/debug.log;
// otherwise they are discarded unless a logger is installed with SetLogger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	// LogFileName is the name of the debug log file.
	LogFileName = "debug.log"
	// ConfigDir is the directory holding project state.
	ConfigDir = ".tasklog"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	logFile       *os.File
)

// Init opens <projectRoot>/.tasklog/debug.log in append mode and routes the
// default logger to it. An empty projectRoot disables logging.
func Init(projectRoot string, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	closeFileLocked()

	var w io.Writer = io.Discard
	if projectRoot != "" {
		dir := filepath.Join(projectRoot, ConfigDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logFile = f
		w = f
	}

	defaultLogger = newLogger(slog.NewJSONHandler(w, handlerOptions(level)))
	return nil
}

// NewStderr returns a text logger writing to stderr.
func NewStderr(level slog.Level) *slog.Logger {
	return newLogger(slog.NewTextHandler(os.Stderr, handlerOptions(level)))
}

// SetLogger replaces the default logger.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	closeFileLocked()
	defaultLogger = l
}

// Close closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	defaultLogger = nil
	return err
}

// Logger returns the default logger, or a no-op logger before Init.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return defaultLogger
}

func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// With returns the default logger with the given attributes.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

func newLogger(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
}

func closeFileLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
