package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAddsModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerFromCore(core)

	l.Info("IndexBuilder", "Index built", map[string]interface{}{"chunks": 12})
	l.Warn("ChatService", "Turn aborted", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "Index built", entries[0].Message)
	assert.Equal(t, "IndexBuilder", first["module"])
	assert.Equal(t, map[string]interface{}{"chunks": 12}, first["details"])

	second := entries[1].ContextMap()
	assert.Equal(t, map[string]interface{}{}, second["details"])
}

func TestZapLoggerErrorKeepsErrorReference(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerFromCore(core)

	l.Error("ChatService", "LLM call failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.FilterField(zapcore.Field{Key: "module", Type: zapcore.StringType, String: "ChatService"}).All()
	require.Len(t, entries, 1)
	_, ok := entries[0].ContextMap()["error_ref"]
	assert.True(t, ok)
}

func TestNopLoggerImplementsILogger(t *testing.T) {
	var l ILogger = NopLogger{}
	l.Info("x", "y", nil)
	assert.NoError(t, l.Sync())
}
