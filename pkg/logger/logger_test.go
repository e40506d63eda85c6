package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogsCarryService(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := InfoLogger
	InfoLogger = zap.New(core)
	old := SetServiceName("signal_bot")
	t.Cleanup(func() {
		InfoLogger = prev
		SetServiceName(old)
	})

	Info("[SCAN] %d symbols", 3)
	Warn("[FETCH] retry %s", "BTCUSDT")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "[SCAN] 3 symbols", entries[0].Message)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "signal_bot", entries[0].ContextMap()["service"])
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init("loud", "x"))
}
