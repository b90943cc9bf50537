// Package observe provides observability primitives for the upmixer:
// OpenTelemetry metric instruments for the conversion pipeline and a
// Prometheus exporter bridge for long-running batch jobs.
//
// The per-sample hot path records nothing; instruments are updated once per
// chunk or per conversion. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all upmixer metrics.
const meterName = "github.com/tphakala/go-audio-upmixer"

// Metrics holds the OpenTelemetry metric instruments for the conversion
// pipeline. All fields are safe for concurrent use — the underlying OTel
// types handle their own synchronisation.
type Metrics struct {
	// ChunkDuration tracks wall time spent processing one chunk through the
	// parallel scheduler. Use with attribute.String("mode", ...).
	ChunkDuration metric.Float64Histogram

	// FramesProcessed counts stereo input frames consumed.
	FramesProcessed metric.Int64Counter

	// ChunksProcessed counts chunks handed to the scheduler. Use with
	// attribute.String("path", "parallel"|"sequential").
	ChunksProcessed metric.Int64Counter

	// Conversions counts completed conversions by mode and status.
	Conversions metric.Int64Counter

	// ActiveConversions tracks conversions currently in flight.
	ActiveConversions metric.Int64UpDownCounter
}

// chunkDurationBuckets defines histogram boundaries (seconds) sized for
// chunk processing times: a 4096-frame chunk typically completes in well
// under a millisecond, so the buckets skew small.
var chunkDurationBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ChunkDuration, err = m.Float64Histogram("upmixer.chunk.duration",
		metric.WithDescription("Wall time spent processing one chunk."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(chunkDurationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FramesProcessed, err = m.Int64Counter("upmixer.frames.processed",
		metric.WithDescription("Total stereo input frames consumed."),
	); err != nil {
		return nil, err
	}
	if met.ChunksProcessed, err = m.Int64Counter("upmixer.chunks.processed",
		metric.WithDescription("Total chunks handed to the scheduler by path."),
	); err != nil {
		return nil, err
	}
	if met.Conversions, err = m.Int64Counter("upmixer.conversions",
		metric.WithDescription("Completed conversions by mode and status."),
	); err != nil {
		return nil, err
	}
	if met.ActiveConversions, err = m.Int64UpDownCounter("upmixer.active_conversions",
		metric.WithDescription("Conversions currently in flight."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}
