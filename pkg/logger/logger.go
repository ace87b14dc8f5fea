package logger

import (
	"go.uber.org/zap"
)

// Logger is the logging interface used across services and background
// workers. It hides the concrete zap logger so tests can pass a no-op.
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

type zapLogger struct {
	zap *zap.Logger
}

func (l zapLogger) Info(msg string, fields ...Field)  { l.zap.Info(msg, fields...) }
func (l zapLogger) Warn(msg string, fields ...Field)  { l.zap.Warn(msg, fields...) }
func (l zapLogger) Error(msg string, fields ...Field) { l.zap.Error(msg, fields...) }

// New builds a Logger writing JSON to stdout with the given namespace
// attached to every entry.
func New(namespace string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.InitialFields = map[string]interface{}{
		"namespace": namespace,
	}
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return zapLogger{zap: l}
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() Logger {
	return zapLogger{zap: zap.NewNop()}
}
