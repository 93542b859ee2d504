package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("debug"))
	assert.Equal(t, INFO, ParseLogLevel("info"))
	assert.Equal(t, WARN, ParseLogLevel("warn"))
	assert.Equal(t, WARN, ParseLogLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLogLevel("error"))
	assert.Equal(t, FATAL, ParseLogLevel("fatal"))
	// 未知级别回退到 info
	assert.Equal(t, INFO, ParseLogLevel("verbose"))
	assert.Equal(t, INFO, ParseLogLevel(""))
}

func TestNewRespectsLevel(t *testing.T) {
	debugLogger, err := New(DEBUG)
	require.NoError(t, err)
	assert.True(t, debugLogger.zapLogger.Core().Enabled(zapcore.DebugLevel))

	warnLogger, err := New(WARN)
	require.NoError(t, err)
	assert.False(t, warnLogger.zapLogger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, warnLogger.zapLogger.Core().Enabled(zapcore.WarnLevel))
}

func TestSetDefaultLoggerRoutesGlobals(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := defaultLogger
	SetDefaultLogger(&Logger{zapLogger: zap.New(core)})
	defer SetDefaultLogger(previous)

	Debug("campaign %d reconciled", 7)
	Info("sweep done")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "campaign 7 reconciled", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "sweep done", entries[1].Message)
}
