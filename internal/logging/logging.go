// Package logging configures the process-wide logrus logger. Level comes
// from LOG_LEVEL, and LOG_FILE additionally mirrors output into a
// size-rotated file next to the console stream.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the shared logger configuration. Call once at startup.
func Setup() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level := logrus.InfoLevel
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if parsed, err := logrus.ParseLevel(strings.ToLower(levelStr)); err == nil {
			level = parsed
		}
	}
	logrus.SetLevel(level)

	out := io.Writer(os.Stderr)
	if file := os.Getenv("LOG_FILE"); file != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	logrus.SetOutput(out)
}
