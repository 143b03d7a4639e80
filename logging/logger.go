// Package logging provides pre-configured logrus loggers for dashd components.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// Defaults applied to loggers created after Configure is called.
	defaultLevel = logrus.InfoLevel
	defaultFile  = ""
)

// Configure sets the process-wide log level and optional log file path.
// It must be called before components request their loggers; already-created
// loggers keep their settings.
func Configure(level, file string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if parsed, err := logrus.ParseLevel(level); err == nil {
		defaultLevel = parsed
	}
	defaultFile = file
}

// NewLogger creates and returns a pre-configured logger for a specific
// component. It uses a singleton pattern per component to avoid
// re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	level := defaultLevel
	if envLevel := os.Getenv("DASHD_LOG_LEVEL"); envLevel != "" {
		if parsed, err := logrus.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)

	logger.SetFormatter(&TextFormatter{
		Color: isatty.IsTerminal(os.Stderr.Fd()),
	})

	writers := []io.Writer{os.Stderr}
	if defaultFile != "" {
		if err := os.MkdirAll(filepath.Dir(defaultFile), 0755); err == nil {
			file, err := os.OpenFile(defaultFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				writers = append(writers, file)
			} else {
				logger.Warnf("Failed to open log file %s: %v", defaultFile, err)
			}
		}
	}
	if len(writers) == 1 {
		logger.SetOutput(writers[0])
	} else {
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// NewTestLogger returns a quiet logger entry for use in tests.
func NewTestLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}
