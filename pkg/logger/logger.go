// pkg/logger/logger.go
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the encoder and level for a service logger.
type Options struct {
	Service    string
	Production bool
	// Level is a zap level name; empty keeps the encoder's default.
	Level string
}

// New builds a JSON logger for production and a console logger otherwise.
// Both carry the service name on every entry.
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.Production {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}
	config.InitialFields = map[string]interface{}{
		"service": opts.Service,
	}
	return config.Build()
}

// MustNew is New for process startup, where a broken logger config is fatal.
func MustNew(opts Options) *zap.Logger {
	logger, err := New(opts)
	if err != nil {
		panic(err)
	}
	return logger
}
