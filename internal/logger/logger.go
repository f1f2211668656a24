// Package logger builds the zap logger shared by every host component
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New writes to stderr only: stdout belongs to command results
func New(level, encoding string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          encoding,
		DisableStacktrace: lvl > zapcore.DebugLevel,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     encCfg,
	}
	return cfg.Build()
}
