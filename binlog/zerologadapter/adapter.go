// Package zerologadapter adapts a github.com/rs/zerolog.Logger to binlog.Logger.
package zerologadapter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/binstruct/binstruct/binlog"
)

// Logger adapts a zerolog.Logger to binlog.Logger.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger wraps logger as a binlog.Logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("module", "binstruct").Logger()}
}

func (l *Logger) Log(ctx context.Context, level binlog.LogLevel, msg string, data map[string]any) {
	var zlevel zerolog.Level
	switch level {
	case binlog.LogLevelNone:
		zlevel = zerolog.NoLevel
	case binlog.LogLevelError:
		zlevel = zerolog.ErrorLevel
	case binlog.LogLevelWarn:
		zlevel = zerolog.WarnLevel
	case binlog.LogLevelInfo:
		zlevel = zerolog.InfoLevel
	default:
		zlevel = zerolog.DebugLevel
	}

	event := l.logger.WithLevel(zlevel)
	if event.Enabled() {
		event.Fields(data).Msg(msg)
	}
}
