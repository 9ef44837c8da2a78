package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide sugared logger. Development mode switches to
// console encoding with debug level.
func New(appName string, development bool) *zap.SugaredLogger {
	var l *zap.Logger
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		l = zap.Must(cfg.Build())
	} else {
		l = zap.Must(zap.NewProduction())
	}
	return l.Named(appName).Sugar()
}
