package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type name string

func (n name) String() string { return string(n) }

func TestLogger_FieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelDebug).With(Component("driver"))

	l.Info("decision finished",
		String("tree", "mage"),
		Int("iterations", 3),
		Bool("abandoned", false),
		Duration("took", time.Millisecond),
		Stringer("archetype", name("healer")),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "decision finished", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "driver", fields["component"])
	assert.Equal(t, "mage", fields["tree"])
	assert.Equal(t, int64(3), fields["iterations"])
	assert.Equal(t, "healer", fields["archetype"])
	assert.Equal(t, "boom", fields["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, LevelWarn, l.GetLevel())

	derived := l.With(String("k", "v"))
	l.SetLevel(LevelDebug)
	derived.Debug("shown too")
	assert.Equal(t, 2, logs.Len())

	l.Log(LevelSilent, "never")
	assert.Equal(t, 2, logs.Len())

	derived.SetLevel(LevelError)
	l.Warn("hidden again")
	derived.Info("hidden again")
	l.Error("shown")
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, LevelError, l.GetLevel())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"loud":    LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() { l.With(Component("x")).Error("dropped") })
	assert.NotNil(t, Provide())
}
