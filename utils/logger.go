// Package utils provides utility functions for the application.
package utils

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions configures the structured logger. Testing suppresses
// WarnException output so test runs stay quiet.
type LoggerOptions struct {
	Level      string // debug, info, warn, error
	FilePath   string // empty disables the rolling file sink
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Testing    bool
}

// Logger wraps zap with an exception helper that respects test mode.
type Logger struct {
	zl      *zap.Logger
	testing bool
}

// NewLogger builds a zap logger writing JSON to stdout and, when FilePath is
// set, to a lumberjack-rotated file.
func NewLogger(opts LoggerOptions) (*Logger, error) {
	level := parseLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if opts.FilePath != "" {
		if dir := filepath.Dir(opts.FilePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		lj := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    nonZero(opts.MaxSizeMB, 100),
			MaxBackups: nonZero(opts.MaxBackups, 10),
			MaxAge:     nonZero(opts.MaxAgeDays, 30),
			Compress:   opts.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), level))
	}

	zl := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &Logger{zl: zl, testing: opts.Testing}, nil
}

// NewTestLogger returns a logger suitable for tests: stdout only, exception
// logging suppressed.
func NewTestLogger() *Logger {
	l, _ := NewLogger(LoggerOptions{Level: "error", Testing: true})
	return l
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger { return l.zl }

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zl.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zl.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zl.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zl.Error(msg, fields...) }

// WarnException logs the error with a stack trace at warn level. Suppressed
// in test mode to keep test output clean.
func (l *Logger) WarnException(err error, msg string, fields ...zap.Field) {
	if l.testing {
		return
	}
	l.logException(err, msg, fields...)
}

// ForceWarnException logs the error even in test mode.
func (l *Logger) ForceWarnException(err error, msg string, fields ...zap.Field) {
	l.logException(err, msg, fields...)
}

func (l *Logger) logException(err error, msg string, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.Stack("stacktrace"))
	l.zl.Warn(msg, fields...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error { return l.zl.Sync() }

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func nonZero(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
