// Package observability builds the structured loggers used across the bot.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/artifactsbot/internal/config"
)

// NewLogger creates a logger for the named binary writing to stderr.
//
// Entries carry a "service" field when service is non-empty. There is no
// sampling, so per-simulation debug lines are never dropped.
//
// Precondition: cfg has passed config.Validate.
func NewLogger(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	return newLogger(cfg, service, zapcore.Lock(os.Stderr))
}

func newLogger(cfg config.LoggingConfig, service string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	enc, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if service != "" {
		opts = append(opts, zap.Fields(zap.String("service", service)))
	}
	return zap.New(zapcore.NewCore(enc, sink, level), opts...), nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	switch format {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec), nil
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
