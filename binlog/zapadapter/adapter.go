// Package zapadapter adapts a go.uber.org/zap.Logger to binlog.Logger.
package zapadapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/binstruct/binstruct/binlog"
)

type Logger struct {
	l *zap.SugaredLogger
}

func NewLogger(l *zap.Logger) *Logger {
	return &Logger{l: l.Sugar()}
}

func (l *Logger) Log(ctx context.Context, level binlog.LogLevel, msg string, data map[string]any) {
	fields := make([]any, 0, len(data)*2)
	for k, v := range data {
		fields = append(fields, k, v)
	}

	switch level {
	case binlog.LogLevelTrace, binlog.LogLevelDebug:
		l.l.Debugw(msg, fields...)
	case binlog.LogLevelInfo:
		l.l.Infow(msg, fields...)
	case binlog.LogLevelWarn:
		l.l.Warnw(msg, fields...)
	case binlog.LogLevelError:
		l.l.Errorw(msg, fields...)
	default:
		l.l.Errorw(msg, append(fields, "invalid_binstruct_log_level", level)...)
	}
}
