// Package logging builds the logrus logger shared by every command. Logs go
// to stderr; stdout carries only command output.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to w at the given level ("warning", "debug",
// ...) with a text or json formatter.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat:  time.RFC3339Nano,
			DisableColors:    true,
			FullTimestamp:    true,
			QuoteEmptyFields: true,
		})
	default:
		return nil, fmt.Errorf("unsupported logging formatter: %q", format)
	}
	return log, nil
}

// Discard returns a logger that drops everything, for tests and library use.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
