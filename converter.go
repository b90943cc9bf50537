package upmixer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tphakala/go-audio-upmixer/internal/decode"
	"github.com/tphakala/go-audio-upmixer/internal/encode"
	"github.com/tphakala/go-audio-upmixer/internal/observe"
	"github.com/tphakala/go-audio-upmixer/internal/pipeline"
)

// Source is the decode collaborator: a stream of interleaved PCM samples
// normalized to [-1, 1]. The converter collapses any channel layout to
// stereo and adapts the rate to ProcessingRate before synthesis.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int

	// Channels count (e.g. 1=mono, 2=stereo).
	Channels() int

	// TotalFrames reports the stream length in frames for progress
	// calculation, or 0 when unknown.
	TotalFrames() int64

	// ReadSamples fills dst with interleaved samples. Returns the number of
	// samples (not frames) written; n == 0 with io.EOF ends the stream.
	ReadSamples(dst []float64) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Sink is the encode collaborator: it consumes interleaved multichannel
// frames matching the configured mode's channel count and order, in input
// order, with monotonically increasing presentation timestamps.
type Sink interface {
	// WriteFrames encodes interleaved samples. ptsMicros is the
	// presentation timestamp of the first frame in microseconds.
	WriteFrames(samples []float64, ptsMicros int64) error

	// Close flushes buffered data and finalizes the container.
	Close() error
}

// ProcessResult describes a completed conversion. Produced once, at
// pipeline completion; immutable.
type ProcessResult struct {
	// OutputPath is the output file location; empty for stream conversions.
	OutputPath string

	// SampleRate of the output stream in Hz.
	SampleRate int

	// ChannelCount of the output stream.
	ChannelCount int

	// Frames is the total output frame count.
	Frames int64

	// Mode is the synthesis mode used.
	Mode OutputMode
}

// Converter drives the streaming decode → accumulate → parallel-process →
// encode loop. A Converter runs one conversion at a time; the scheduler,
// accumulator and buffer pool it owns are reused across conversions.
type Converter struct {
	config Config

	sched *pipeline.Scheduler
	pool  *pipeline.BufferPool
	ring  *pipeline.RingBuffer

	metrics *observe.Metrics
	running atomic.Bool
}

// New creates a converter with the specified configuration.
func New(config *Config) (*Converter, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	cfg.applyDefaults()

	mode := cfg.Mode.engineMode()
	c := &Converter{
		config: cfg,
		sched:  pipeline.NewScheduler(mode, ProcessingRate, cfg.Workers),
		pool:   pipeline.NewBufferPool(cfg.ChunkFrames, mode.ChannelCount()),
		ring:   pipeline.NewRingBuffer(cfg.ChunkFrames * stereoSampleFactor),
	}
	if cfg.EnableMetrics {
		c.metrics = observe.DefaultMetrics()
	}
	return c, nil
}

// stereoSampleFactor sizes the accumulator: two samples per stereo frame,
// doubled so a full chunk can be buffered while the next reads land.
const stereoSampleFactor = 4

const (
	stageProcessing = "processing"
	stageFlushing   = "flushing remainder"
	stageComplete   = "complete"

	percentMax     = 100
	percentRunning = 99
)

// ConvertFile converts the audio file at inputPath into a multichannel WAV
// file at outputPath. Input format is selected by extension (.wav, .mp3,
// .ogg). On failure no partial output file of indeterminate layout is kept.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) (*ProcessResult, error) {
	src, err := decode.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	sink, err := encode.Create(outputPath, ProcessingRate, c.config.BitDepth,
		c.config.Mode.ChannelCount(), c.config.OutputGain)
	if err != nil {
		return nil, err
	}

	result, err := c.Convert(ctx, src, sink)
	if err != nil {
		// A failed conversion must not leave a partially-drained file.
		_ = sink.Close()
		_ = os.Remove(outputPath)
		return nil, err
	}

	if err := sink.Close(); err != nil {
		_ = os.Remove(outputPath)
		return nil, fmt.Errorf("failed to finalize output: %w", err)
	}

	result.OutputPath = outputPath
	return result, nil
}

// Convert runs the streaming loop over an open source and sink. The caller
// owns both and closes them after Convert returns.
//
// Cancellation is cooperative and checked only at chunk boundaries: a chunk
// in flight always completes and ctx.Err() is returned afterwards. This is
// a normal early-termination path, not a processing failure.
func (c *Converter) Convert(ctx context.Context, src Source, sink Sink) (*ProcessResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer c.running.Store(false)

	c.ring.Clear()
	c.sched.Reset()

	if c.metrics != nil {
		c.metrics.ActiveConversions.Add(ctx, 1)
		defer c.metrics.ActiveConversions.Add(ctx, -1)
	}

	stereo := decode.AdaptStereo(src, ProcessingRate)
	totalFrames := stereo.TotalFrames()

	chunkFrames := c.config.ChunkFrames
	chunkSamples := chunkFrames * 2
	channels := c.config.Mode.ChannelCount()
	readBuf := make([]float64, chunkSamples)

	var (
		framesOut int64
		ptsMicros int64
		eof       bool
	)

	for {
		// Accumulate decoder output until a full chunk is buffered.
		for c.ring.Available() < chunkSamples && !eof {
			n, err := stereo.ReadSamples(readBuf)
			if n > 0 {
				c.ring.Write(readBuf[:n])
			}
			if err == io.EOF {
				eof = true
			} else if err != nil {
				return nil, fmt.Errorf("decode failed: %w", err)
			}
		}

		full := c.ring.Available() >= chunkSamples
		if !full && c.ring.Available() == 0 {
			break
		}

		buffers := c.pool.Acquire()

		var frames int
		if full {
			frames = chunkFrames
			c.ring.ReadInto(buffers.In)
			c.processParallel(ctx, buffers, frames)
		} else {
			// Final partial chunk: the sequential fallback keeps a single
			// persistent filter bank across the whole remainder.
			n := c.ring.ReadInto(buffers.In)
			frames = n / 2
			c.reportProgress(totalFrames, framesOut, stageFlushing)
			c.processSequential(ctx, buffers, frames)
		}

		err := sink.WriteFrames(buffers.Out[:frames*channels], ptsMicros)
		c.pool.Release(buffers)
		if err != nil {
			return nil, fmt.Errorf("encode failed: %w", err)
		}

		framesOut += int64(frames)
		ptsMicros += int64(frames) * microsPerSecond / ProcessingRate
		c.reportProgress(totalFrames, framesOut, stageProcessing)

		// Cooperative cancellation between chunks only; the chunk above
		// completed and its buffers are already released.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if eof && c.ring.Available() == 0 {
			break
		}
	}

	if c.config.Progress != nil {
		c.config.Progress(percentMax, stageComplete)
	}
	if c.metrics != nil {
		c.metrics.Conversions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("mode", c.config.Mode.String()),
			attribute.String("status", "ok"),
		))
	}

	return &ProcessResult{
		SampleRate:   ProcessingRate,
		ChannelCount: channels,
		Frames:       framesOut,
		Mode:         c.config.Mode,
	}, nil
}

const microsPerSecond = 1_000_000

func (c *Converter) processParallel(ctx context.Context, buffers *pipeline.ChunkBuffers, frames int) {
	start := time.Now()
	c.sched.ProcessChunk(buffers.Out, buffers.In, frames)
	c.recordChunk(ctx, "parallel", frames, time.Since(start))
}

func (c *Converter) processSequential(ctx context.Context, buffers *pipeline.ChunkBuffers, frames int) {
	start := time.Now()
	c.sched.ProcessChunkSequential(buffers.Out, buffers.In, frames)
	c.recordChunk(ctx, "sequential", frames, time.Since(start))
}

func (c *Converter) recordChunk(ctx context.Context, path string, frames int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", c.config.Mode.String()),
		attribute.String("path", path),
	)
	c.metrics.ChunksProcessed.Add(ctx, 1, attrs)
	c.metrics.FramesProcessed.Add(ctx, int64(frames), attrs)
	c.metrics.ChunkDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// reportProgress emits a 0-99 percent while the stream runs. When the
// total is unknown the percent stays at 0 and only the stage label moves.
func (c *Converter) reportProgress(totalFrames, framesOut int64, stage string) {
	if c.config.Progress == nil {
		return
	}
	percent := 0
	if totalFrames > 0 {
		percent = int(framesOut * percentMax / totalFrames)
		if percent > percentRunning {
			percent = percentRunning
		}
	}
	c.config.Progress(percent, stage)
}
