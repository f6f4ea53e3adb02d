// Package logger wraps zap construction so main can build the
// process-wide structured logger in one step.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Logger holds the process-wide zap logger.
type Logger struct {
	// Log is the underlying zap logger. It is a no-op until Init is
	// called.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production logger at the given level ("Debug",
// "Info", "Warn", "Error"; case-insensitive) and installs it on the
// receiver.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = log
	return nil
}
