package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	core, logs := observer.New(zapcore.InfoLevel)

	shutdown, err := Init(context.Background(), zap.New(core))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, false, logs.All()[0].ContextMap()["tracing_enabled"])
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	core, logs := observer.New(zapcore.InfoLevel)

	shutdown, err := Init(context.Background(), zap.New(core))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	require.Equal(t, 1, logs.FilterMessage("tracing init failed").Len())
}

func TestNewSampler(t *testing.T) {
	cases := map[string]string{
		"always_on":                "AlwaysOnSampler",
		"always_off":               "AlwaysOffSampler",
		"traceidratio":             "TraceIDRatioBased{0.25}",
		"parentbased_always_on":    "ParentBased{root:AlwaysOnSampler",
		"parentbased_traceidratio": "ParentBased{root:TraceIDRatioBased{0.25}",
		"bogus":                    "ParentBased{root:AlwaysOnSampler",
	}
	for name, want := range cases {
		assert.Contains(t, newSampler(name, "0.25").Description(), want, name)
	}

	assert.Contains(t, newSampler("traceidratio", "lots").Description(), "AlwaysOnSampler")
}
