package zapadapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/binstruct/binstruct/binlog"
	"github.com/binstruct/binstruct/binlog/zapadapter"
)

func TestLoggerDoesNotPanicAcrossLevels(t *testing.T) {
	base, err := zap.NewDevelopment()
	assert.NoError(t, err)
	logger := zapadapter.NewLogger(base)

	levels := []binlog.LogLevel{
		binlog.LogLevelTrace, binlog.LogLevelDebug, binlog.LogLevelInfo,
		binlog.LogLevelWarn, binlog.LogLevelError,
	}
	for _, lvl := range levels {
		assert.NotPanics(t, func() {
			logger.Log(context.Background(), lvl, "hello", map[string]any{"one": "two"})
		})
	}
}
