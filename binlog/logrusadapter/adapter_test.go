package logrusadapter_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/binstruct/binstruct/binlog"
	"github.com/binstruct/binstruct/binlog/logrusadapter"
)

func TestLoggerDoesNotPanicAcrossLevels(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	logger := logrusadapter.NewLogger(base)

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
