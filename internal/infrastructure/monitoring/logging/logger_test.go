package logging

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestLoggerEmitsStructuredFields(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.DebugLevel)

	logger.Info("scheme initialized",
		String("target", "propane"),
		Int("benchmarks", 3),
		Bool("conserve_bonds", true),
		Duration("elapsed", 40*time.Millisecond),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "scheme initialized", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "propane", fields["target"])
	assert.Equal(t, int64(3), fields["benchmarks"])
	assert.Equal(t, true, fields["conserve_bonds"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")
	logger.Error("also visible")

	assert.Equal(t, 2, logs.Len())
}

func TestLoggerWithAttachesFields(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.InfoLevel)

	child := logger.With(String("component", "solver"))
	child.Info("solving")
	// Parent is unaffected.
	logger.Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "solver", entries[0].ContextMap()["component"])
	assert.NotContains(t, entries[1].ContextMap(), "component")
}

func TestLoggerNamed(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.InfoLevel)

	logger.Named("estimation").Named("scheme").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "estimation.scheme", entries[0].LoggerName)
}

func TestErrField(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.InfoLevel)

	logger.Error("failed", Err(stderrors.New("boom")))
	logger.Error("no cause", Err(nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "<nil>", entries[1].ContextMap()["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Must not panic and With/Named must return usable loggers.
	logger.With(String("k", "v")).Named("x").Info("ignored")
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	logger, logs := newObservedLogger(zapcore.InfoLevel)
	SetDefault(logger)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored.
	SetDefault(nil)
	assert.Equal(t, logger, Default())
}
