package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetricsCreatesAllInstruments(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	require.NotNil(t, m.ChunkDuration)
	require.NotNil(t, m.FramesProcessed)
	require.NotNil(t, m.ChunksProcessed)
	require.NotNil(t, m.Conversions)
	require.NotNil(t, m.ActiveConversions)
}

func TestMetricsRecordAndCollect(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(ctx)

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	attrs := metric.WithAttributes(attribute.String("mode", "surround51"))
	m.FramesProcessed.Add(ctx, 4096, attrs)
	m.FramesProcessed.Add(ctx, 2048, attrs)
	m.ChunksProcessed.Add(ctx, 2, attrs)
	m.ChunkDuration.Record(ctx, 0.0004, attrs)
	m.ActiveConversions.Add(ctx, 1)
	m.ActiveConversions.Add(ctx, -1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	scope := rm.ScopeMetrics[0]
	assert.Equal(t, meterName, scope.Scope.Name)

	byName := map[string]metricdata.Metrics{}
	for _, md := range scope.Metrics {
		byName[md.Name] = md
	}

	frames, ok := byName["upmixer.frames.processed"]
	require.True(t, ok, "frames counter missing from collection")
	sum, ok := frames.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(6144), sum.DataPoints[0].Value)

	active, ok := byName["upmixer.active_conversions"]
	require.True(t, ok)
	activeSum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(0), activeSum.DataPoints[0].Value)

	duration, ok := byName["upmixer.chunk.duration"]
	require.True(t, ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestDefaultMetricsIsSingleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	assert.Same(t, a, b)
}
