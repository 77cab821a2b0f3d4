// README: Global zap logger shared by main and middleware.
package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger = zap.NewNop()

// Init replaces the global logger. Call once from main before anything logs.
func Init(service string, development bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	log = l.With(zap.String("service", service))
	return nil
}

// Sync flushes buffered log entries. Safe to defer from main.
func Sync() {
	_ = log.Sync()
}

func L() *zap.Logger { return log }

func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }
