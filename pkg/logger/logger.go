// Package logger is the node-wide leveled logger. It wraps a zap
// SugaredLogger and exposes both key/value and printf style methods.
package logger

import (
	"strings"

	"gnsnode/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	s *zap.SugaredLogger
}

var nop = zap.NewNop().Sugar()

func NewLogger(cfg *config.Config) (*Logger, error) {
	var zc zap.Config
	if cfg.LoggerMode.Development || !cfg.LoggerMode.Prod {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
	}
	if lvl := strings.TrimSpace(cfg.LoggerMode.Level); lvl != "" {
		parsed, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(parsed)
	}

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{s: l.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger { return Logger{} }

func (l Logger) sugar() *zap.SugaredLogger {
	if l.s == nil {
		return nop
	}
	return l.s
}

// With returns a child logger carrying the given key/value pairs.
func (l Logger) With(kv ...any) Logger {
	return Logger{s: l.sugar().With(kv...)}
}

func (l Logger) Debug(msg string, kv ...any) { l.sugar().Debugw(msg, kv...) }
func (l Logger) Info(msg string, kv ...any)  { l.sugar().Infow(msg, kv...) }
func (l Logger) Warn(msg string, kv ...any)  { l.sugar().Warnw(msg, kv...) }
func (l Logger) Error(msg string, kv ...any) { l.sugar().Errorw(msg, kv...) }

func (l Logger) Debugf(format string, args ...any) { l.sugar().Debugf(format, args...) }
func (l Logger) Infof(format string, args ...any)  { l.sugar().Infof(format, args...) }
func (l Logger) Warnf(format string, args ...any)  { l.sugar().Warnf(format, args...) }
func (l Logger) Errorf(format string, args ...any) { l.sugar().Errorf(format, args...) }

// Sync flushes buffered entries.
func (l Logger) Sync() error {
	if l.s == nil {
		return nil
	}
	return l.s.Sync()
}
