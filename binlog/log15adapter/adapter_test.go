package log15adapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/binstruct/binstruct/binlog"
	"github.com/binstruct/binstruct/binlog/log15adapter"
)

type fakeLog15 struct {
	lastLevel string
	lastMsg   string
}

func (f *fakeLog15) Debug(msg string, ctx ...any) { f.lastLevel, f.lastMsg = "debug", msg }
func (f *fakeLog15) Info(msg string, ctx ...any)  { f.lastLevel, f.lastMsg = "info", msg }
func (f *fakeLog15) Warn(msg string, ctx ...any)  { f.lastLevel, f.lastMsg = "warn", msg }
func (f *fakeLog15) Error(msg string, ctx ...any) { f.lastLevel, f.lastMsg = "error", msg }

func TestLoggerDispatchesToMatchingLevel(t *testing.T) {
	fake := &fakeLog15{}
	logger := log15adapter.NewLogger(fake)

	logger.Log(context.Background(), binlog.LogLevelWarn, "hello", map[string]any{"one": "two"})
	assert.Equal(t, "warn", fake.lastLevel)
	assert.Equal(t, "hello", fake.lastMsg)

	logger.Log(context.Background(), binlog.LogLevelError, "bye", nil)
	assert.Equal(t, "error", fake.lastLevel)
}
