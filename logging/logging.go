// Package logging builds the application's zap logger from configuration.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/todograph-go/apperror"
	"github.com/user/todograph-go/config"
)

// New creates a logger for cfg: JSON output in production, console output with
// stack traces on warnings in development.
func New(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, apperror.NewConfigError(fmt.Sprintf("invalid log level %q", cfg.Level), err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, apperror.NewConfigError("failed to build logger", err)
	}
	return logger.Named("todograph"), nil
}
