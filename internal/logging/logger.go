// Package logging builds the shared zap logger and the HTTP request logging
// middleware.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction. The zero value is a production JSON
// logger at info level writing to stderr.
type Config struct {
	Level  string
	Format string
	Output string
}

// New builds a *zap.Logger from the configuration.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	switch cfg.Format {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Output {
	case "", "stderr":
		zc.OutputPaths = []string{"stderr"}
	case "stdout":
		zc.OutputPaths = []string{"stdout"}
	default:
		zc.OutputPaths = []string{cfg.Output}
	}

	return zc.Build()
}
