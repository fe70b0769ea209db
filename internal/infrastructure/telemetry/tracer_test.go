package telemetry_test

import (
	"context"
	"testing"

	"github.com/microfinance/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "test-service"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestTracerProvider_ExportsSpans(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	tp := telemetry.NewTracerProviderWithExporter(telemetry.Config{
		Enabled:       true,
		SamplingRatio: 1.0,
		ServiceName:   "test-service",
	}, exporter, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := otel.Tracer("test").Start(ctx, "customer.activate")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "customer.activate", spans[0].Name)
	assert.True(t, tp.IsEnabled())
}

func TestTracerProvider_NeverSample(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	tp := telemetry.NewTracerProviderWithExporter(telemetry.Config{
		Enabled:       true,
		SamplingRatio: 0,
	}, exporter, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := tp.Tracer("test").Start(ctx, "dropped")
	span.End()

	assert.Empty(t, exporter.GetSpans())
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	ctx := context.Background()

	disabled, err := telemetry.NewTracerProvider(ctx, telemetry.Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	disabled.EnableSpanProfiles()
	assert.False(t, disabled.IsSpanProfilesEnabled())

	tp := telemetry.NewTracerProviderWithExporter(telemetry.Config{Enabled: true, SamplingRatio: 1},
		tracetest.NewInMemoryExporter(), zaptest.NewLogger(t))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })
	tp.EnableSpanProfiles()
	tp.EnableSpanProfiles()
	assert.True(t, tp.IsSpanProfilesEnabled())
}
