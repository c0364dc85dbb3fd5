// Package kitlogadapter adapts a github.com/go-kit/log.Logger to
// binlog.Logger.
package kitlogadapter

import (
	"context"

	kitlog "github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"

	"github.com/binstruct/binstruct/binlog"
)

type Logger struct {
	l kitlog.Logger
}

func NewLogger(l kitlog.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level binlog.LogLevel, msg string, data map[string]any) {
	var logger kitlog.Logger
	if data != nil {
		keyvals := make([]any, 0, len(data)*2)
		for k, v := range data {
			keyvals = append(keyvals, k, v)
		}
		logger = kitlog.With(l.l, keyvals...)
	} else {
		logger = l.l
	}

	switch level {
	case binlog.LogLevelTrace:
		logger.Log("binstruct_log_level", level, "msg", msg)
	case binlog.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case binlog.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case binlog.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case binlog.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("invalid_binstruct_log_level", level, "error", msg)
	}
}
