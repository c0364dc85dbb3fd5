// Package binlog provides a logging facade: a small Logger interface any of
// the adapter subpackages satisfy, in the shape of the teacher's tracelog
// package. The schema engine packages do not import it and emit no log
// calls of their own.
package binlog

import (
	"context"
	"errors"
	"fmt"
)

// LogLevel is the severity of a single log call. The zero value means no
// level was specified.
type LogLevel int

const (
	LogLevelTrace = LogLevel(6)
	LogLevelDebug = LogLevel(5)
	LogLevelInfo  = LogLevel(4)
	LogLevelWarn  = LogLevel(3)
	LogLevelError = LogLevel(2)
	LogLevelNone  = LogLevel(1)
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return fmt.Sprintf("invalid level %d", ll)
	}
}

// LogLevelFromString converts a level name ("trace", "debug", "info",
// "warn", "error", "none") to its LogLevel constant.
func LogLevelFromString(s string) (LogLevel, error) {
	switch s {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none":
		return LogLevelNone, nil
	default:
		return 0, errors.New("binlog: invalid log level")
	}
}

// Logger is the interface the schema engine logs through. data may be nil.
type Logger interface {
	Log(ctx context.Context, level LogLevel, msg string, data map[string]any)
}

// LoggerFunc adapts a plain function to the Logger interface.
type LoggerFunc func(ctx context.Context, level LogLevel, msg string, data map[string]any)

func (f LoggerFunc) Log(ctx context.Context, level LogLevel, msg string, data map[string]any) {
	f(ctx, level, msg, data)
}

// Tracer wraps a Logger with a minimum LogLevel, so that a caller logging
// through it needs no level check of its own. Nothing in the schema engine
// calls it.
type Tracer struct {
	Logger   Logger
	LogLevel LogLevel
}

func (t *Tracer) shouldLog(lvl LogLevel) bool {
	return t.Logger != nil && t.LogLevel >= lvl
}

// Trace logs msg at lvl with data if the tracer's configured level permits
// it. It is a no-op if no Logger is configured.
func (t *Tracer) Trace(ctx context.Context, lvl LogLevel, msg string, data map[string]any) {
	if !t.shouldLog(lvl) {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	t.Logger.Log(ctx, lvl, msg, data)
}
