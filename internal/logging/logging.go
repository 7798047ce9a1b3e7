// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"os"

	"github.com/benpsk/stockview/internal/config"
	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr. Production gets JSON lines;
// everything else gets the text formatter with full timestamps.
func New(cfg config.Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

func NewWithOutput(cfg config.Config, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}
	log.SetLevel(level)

	return log
}
