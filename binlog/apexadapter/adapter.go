// Package apexadapter adapts a github.com/apex/log.Interface to
// binlog.Logger.
package apexadapter

import (
	"context"

	"github.com/apex/log"

	"github.com/binstruct/binstruct/binlog"
)

type Logger struct {
	l log.Interface
}

func NewLogger(l log.Interface) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level binlog.LogLevel, msg string, data map[string]any) {
	entry := l.l.WithFields(log.Fields(data))

	switch level {
	case binlog.LogLevelTrace, binlog.LogLevelDebug:
		entry.Debug(msg)
	case binlog.LogLevelInfo:
		entry.Info(msg)
	case binlog.LogLevelWarn:
		entry.Warn(msg)
	case binlog.LogLevelError:
		entry.Error(msg)
	default:
		entry.WithField("invalid_binstruct_log_level", level).Error(msg)
	}
}
