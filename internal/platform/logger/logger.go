package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a key/value logger over zap's SugaredLogger. Values are passed
// through the package redactor before they reach zap.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode ("prod"/"production", anything else means
// development) at the level named by LOG_LEVEL.
func New(mode string) (*Logger, error) {
	return NewWithLevel(mode, os.Getenv("LOG_LEVEL"))
}

func NewWithLevel(mode, level string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if m := strings.ToLower(strings.TrimSpace(mode)); m == "prod" || m == "production" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// ParseLevel maps LOG_LEVEL spellings onto zap levels; unknown values mean info.
func ParseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "err":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func (l *Logger) Sync() { _ = l.SugaredLogger.Sync() }

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, scrub(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, scrub(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, scrub(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, scrub(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, scrub(kv)...) }

// With returns a child logger carrying kv on every entry.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(kv)...)}
}
