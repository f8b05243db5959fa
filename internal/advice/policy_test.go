package advice

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":   LevelDebug,
		"debug":   LevelDebug,
		" Warn ":  LevelWarn,
		"error":   LevelError,
		"INFO":    LevelInfo,
		"TRACE":   LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestPolicy_EmitUsesPolicyLevel(t *testing.T) {
	sink := &recordingSink{}
	NewPolicy(true, "debug").Emit(sink, "hello")

	require.Len(t, sink.Records(), 1)
	assert.Equal(t, record{Level: LevelDebug, Message: "hello"}, sink.Records()[0])
}

func TestPolicy_UnknownLevelBehavesAsInfo(t *testing.T) {
	trace, info := &recordingSink{}, &recordingSink{}
	NewPolicy(true, "TRACE").Emit(trace, "msg")
	NewPolicy(true, "INFO").Emit(info, "msg")

	assert.Equal(t, info.Records(), trace.Records())
	assert.Equal(t, LevelInfo, NewPolicy(true, "TRACE").Level())
}

func TestPolicy_DisabledIsNoop(t *testing.T) {
	sink := &recordingSink{}
	p := NewPolicy(false, "ERROR")

	p.Emit(sink, "a")
	p.EmitFailure(sink, "b", true)

	assert.False(t, p.Enabled())
	assert.Empty(t, sink.Records())
	assert.False(t, DisabledPolicy().Enabled())
}

func TestPolicy_EmitFailureEscalation(t *testing.T) {
	sink := &recordingSink{}
	p := NewPolicy(true, "warn")

	p.EmitFailure(sink, "escalated", true)
	p.EmitFailure(sink, "plain", false)

	assert.Equal(t, []record{
		{Level: LevelError, Message: "escalated"},
		{Level: LevelWarn, Message: "plain"},
	}, sink.Records())
}

func TestPolicy_SinkFailuresAreSwallowedAndCounted(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	p := NewPolicy(true, "info").WithMetrics(m)

	failing := SinkFunc(func(Level, string) error { return errors.New("sink unavailable") })
	panicking := SinkFunc(func(Level, string) error { panic("sink exploded") })

	assert.NotPanics(t, func() {
		p.Emit(failing, "one")
		p.Emit(panicking, "two")
	})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SinkFailures))

	p.Emit(&recordingSink{}, "three")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues("INFO")))
}

func TestZapSink_MapsLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		require.NoError(t, sink.Log(l, "msg "+l.String()))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "msg ERROR", entries[3].Message)
}

func TestMultiSink_ContinuesAfterFailure(t *testing.T) {
	first := SinkFunc(func(Level, string) error { return errors.New("down") })
	second := &recordingSink{}

	err := MultiSink{first, nil, second}.Log(LevelInfo, "msg")

	assert.EqualError(t, err, "down")
	assert.Len(t, second.Records(), 1)
}
