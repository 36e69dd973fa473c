package utils

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// GetLogger returns a singleton logger instance
func GetLogger() *logrus.Logger {
	loggerOnce.Do(func() {
		// Set log level from environment or default to info
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "info"
		}
		logger = NewLogger(level, os.Stdout)
	})

	return logger
}

// NewLogger builds a JSON logger writing to out.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	l := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	l.SetLevel(logLevel)

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetOutput(out)

	return l
}

// DiscardLogger is used by tests that do not assert on log output.
func DiscardLogger() *logrus.Logger {
	return NewLogger("panic", io.Discard)
}
