package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_Levels(t *testing.T) {
	Initialize(false)
	assert.False(t, zap.L().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, zap.L().Core().Enabled(zapcore.WarnLevel))

	Initialize(true)
	assert.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))
}

func TestHelpers_WriteToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	Debugf("resolving %s", "weather")
	Debugw("step", "step", "download")
	Infof("installed %s", "weather")
	Warnf("unscanned %s", "weather")
	Warnw("gate warning", "slug", "weather")
	Errorf("failed %s", "weather")

	entries := logs.All()
	if assert.Len(t, entries, 6) {
		assert.Equal(t, "resolving weather", entries[0].Message)
		assert.Equal(t, "download", entries[1].ContextMap()["step"])
		assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[5].Level)
	}
}
