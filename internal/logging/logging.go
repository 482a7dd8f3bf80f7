// Package logging configures the structured logger shared through context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"ppdrag/config"
)

// New builds a logger from the logging config. A nil writer logs to stderr.
func New(cfg config.LoggingConfig, w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "ppdrag",
	})
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger, nil
}

// Attach stores the logger in ctx and makes it the package default.
func Attach(ctx context.Context, logger *log.Logger) context.Context {
	log.SetDefault(logger)
	return log.WithContext(ctx, logger)
}
