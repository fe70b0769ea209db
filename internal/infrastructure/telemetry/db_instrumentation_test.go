package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/microfinance/backend/internal/infrastructure/telemetry"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

type probe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestInstrumentDB_RecordsQueries(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t, &probe{})
	mp, reader := newManualMeter(t)

	inst, err := telemetry.InstrumentDB(db, telemetry.DBConfig{
		SlowQueryThresh: time.Nanosecond,
		DBName:          "sqlite",
	}, mp.Meter("db.client"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })

	require.NoError(t, db.WithContext(ctx).Create(&probe{Name: "a"}).Error)
	var got []probe
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)

	metrics := collect(t, reader)
	assert.GreaterOrEqual(t, counterValue(t, metrics, "db_slow_query_total", telemetry.AttrDBTable.String("probes")), int64(2))

	h, ok := metrics["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	ops := map[string]uint64{}
	for _, dp := range h.DataPoints {
		op, _ := dp.Attributes.Value(telemetry.AttrDBOperation)
		ops[op.AsString()] += dp.Count
	}
	assert.Equal(t, uint64(1), ops["INSERT"])
	assert.Equal(t, uint64(1), ops["SELECT"])

	_, ok = metrics["db_pool_connections"]
	assert.True(t, ok)
}

func TestInstrumentDB_Tracing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t, &probe{})
	mp, _ := newManualMeter(t)

	exporter := tracetest.NewInMemoryExporter()
	tp := telemetry.NewTracerProviderWithExporter(telemetry.Config{Enabled: true, SamplingRatio: 1}, exporter, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	inst, err := telemetry.InstrumentDB(db, telemetry.DBConfig{
		TraceEnabled:   true,
		DBName:         "sqlite",
		TracerProvider: tp.Provider(),
	}, mp.Meter("db.client"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })

	require.NoError(t, db.WithContext(ctx).Create(&probe{Name: "traced"}).Error)

	assert.NotEmpty(t, exporter.GetSpans())
}
