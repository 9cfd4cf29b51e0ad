// Package logger builds the process logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects level, format and destination of log output.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // json, text
	Output string // stdout, stderr
}

// New returns a configured logrus logger. Unknown levels fall back to info.
func New(cfg Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	log.SetOutput(out)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// LogError logs err with the component/operation that produced it.
func LogError(log logrus.FieldLogger, component, operation string, data any, err error) {
	fields := logrus.Fields{
		"component": component,
		"operation": operation,
	}
	if data != nil {
		fields["data"] = data
	}
	log.WithFields(fields).Error(err.Error())
}
