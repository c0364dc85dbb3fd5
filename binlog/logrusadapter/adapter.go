// Package logrusadapter adapts a github.com/sirupsen/logrus.Logger to
// binlog.Logger.
package logrusadapter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/binstruct/binstruct/binlog"
)

type Logger struct {
	l *logrus.Logger
}

func NewLogger(l *logrus.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level binlog.LogLevel, msg string, data map[string]any) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case binlog.LogLevelTrace:
		logger.WithField("binstruct_log_level", level).Debug(msg)
	case binlog.LogLevelDebug:
		logger.Debug(msg)
	case binlog.LogLevelInfo:
		logger.Info(msg)
	case binlog.LogLevelWarn:
		logger.Warn(msg)
	case binlog.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("invalid_binstruct_log_level", level).Error(msg)
	}
}
