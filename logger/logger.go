// Package logger builds the zap loggers shared by the server and the maintenance commands.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development console logger when dev is set and a JSON production logger
// otherwise. Unknown levels fall back to info.
func New(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Must is New for command entry points, falling back to a no-op logger instead of failing.
func Must(level string, dev bool) *zap.Logger {
	l, err := New(level, dev)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
