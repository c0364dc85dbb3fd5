// Package log15adapter adapts a github.com/inconshreveable/log15/v3.Logger
// to binlog.Logger.
package log15adapter

import (
	"context"

	"github.com/binstruct/binstruct/binlog"
)

// Log15Logger is the subset of log15.Logger this adapter uses.
type Log15Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type Logger struct {
	l Log15Logger
}

func NewLogger(l Log15Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level binlog.LogLevel, msg string, data map[string]any) {
	kvs := make([]any, 0, len(data)*2)
	for k, v := range data {
		kvs = append(kvs, k, v)
	}

	switch level {
	case binlog.LogLevelTrace:
		l.l.Debug(msg, append(kvs, "binstruct_log_level", level)...)
	case binlog.LogLevelDebug:
		l.l.Debug(msg, kvs...)
	case binlog.LogLevelInfo:
		l.l.Info(msg, kvs...)
	case binlog.LogLevelWarn:
		l.l.Warn(msg, kvs...)
	case binlog.LogLevelError:
		l.l.Error(msg, kvs...)
	default:
		l.l.Error(msg, append(kvs, "invalid_binstruct_log_level", level)...)
	}
}
