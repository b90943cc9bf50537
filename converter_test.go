package upmixer

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-upmixer/internal/encode"
	"github.com/tphakala/go-audio-upmixer/internal/testutil"
)

// stereoSource serves interleaved stereo samples from memory.
type stereoSource struct {
	samples  []float64
	pos      int
	readSize int
	closed   bool
}

func newSineSource(frames int) *stereoSource {
	return &stereoSource{samples: testutil.SineFrames(frames, 440, ProcessingRate)}
}

func (s *stereoSource) SampleRate() int    { return ProcessingRate }
func (s *stereoSource) Channels() int      { return 2 }
func (s *stereoSource) TotalFrames() int64 { return int64(len(s.samples) / 2) }

func (s *stereoSource) ReadSamples(dst []float64) (int, error) {
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}
	n := len(dst)
	if s.readSize > 0 && n > s.readSize {
		n = s.readSize
	}
	n = copy(dst[:n], s.samples[s.pos:])
	s.pos += n
	return n, nil
}

func (s *stereoSource) Close() error {
	s.closed = true
	return nil
}

// captureSink records everything the converter writes.
type captureSink struct {
	samples []float64
	pts     []int64
	writes  int
	failAt  int // fail the Nth write when > 0
	closed  bool
}

func (c *captureSink) WriteFrames(samples []float64, ptsMicros int64) error {
	c.writes++
	if c.failAt > 0 && c.writes == c.failAt {
		return errors.New("sink full")
	}
	c.samples = append(c.samples, samples...)
	c.pts = append(c.pts, ptsMicros)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Mode: OutputMode(42)})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Mode: Surround51, Workers: 99})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Mode: Surround51, BitDepth: 12})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(&Config{Mode: Surround71})
	assert.NoError(t, err)
}

func TestConvertProducesAllFrames(t *testing.T) {
	const frames = 10000 // not a multiple of the chunk size

	conv, err := New(&Config{Mode: Surround51, ChunkFrames: 4096, Workers: 2})
	require.NoError(t, err)

	src := newSineSource(frames)
	sink := &captureSink{}

	result, err := conv.Convert(context.Background(), src, sink)
	require.NoError(t, err)

	assert.Equal(t, int64(frames), result.Frames)
	assert.Equal(t, 6, result.ChannelCount)
	assert.Equal(t, ProcessingRate, result.SampleRate)
	assert.Equal(t, Surround51, result.Mode)
	assert.Len(t, sink.samples, frames*6)

	testutil.AssertAllInRange(t, sink.samples, -1.0, 1.0)
	testutil.AssertNoNaNOrInf(t, sink.samples)
}

func TestConvertTimestampsAdvance(t *testing.T) {
	const chunkFrames = 4096

	conv, err := New(&Config{Mode: Surround51Fast, ChunkFrames: chunkFrames})
	require.NoError(t, err)

	sink := &captureSink{}
	_, err = conv.Convert(context.Background(), newSineSource(3*chunkFrames), sink)
	require.NoError(t, err)

	require.Len(t, sink.pts, 3)
	assert.Equal(t, int64(0), sink.pts[0])

	perChunk := int64(chunkFrames) * 1_000_000 / ProcessingRate
	assert.Equal(t, perChunk, sink.pts[1])
	assert.Equal(t, 2*perChunk, sink.pts[2])
}

func TestConvertInputOrderPreserved(t *testing.T) {
	// A linear ramp on the left channel survives as a scaled ramp on FL,
	// which only holds when chunk results land in input order.
	const frames = 9000
	src := &stereoSource{samples: make([]float64, frames*2)}
	for i := 0; i < frames; i++ {
		src.samples[i*2] = float64(i) / frames
	}

	conv, err := New(&Config{Mode: Surround51Fast, ChunkFrames: 2048, Workers: 4})
	require.NoError(t, err)

	sink := &captureSink{}
	_, err = conv.Convert(context.Background(), src, sink)
	require.NoError(t, err)

	for i := 0; i < frames; i++ {
		want := float64(i) / frames * 0.85 // front gain of the fast path
		require.InDelta(t, want, sink.samples[i*6], 1e-12, "frame %d", i)
	}
}

func TestConvertRaggedReads(t *testing.T) {
	// Decoder delivering tiny odd-sized reads must not corrupt framing.
	src := newSineSource(5000)
	src.readSize = 34

	conv, err := New(&Config{Mode: Binaural, ChunkFrames: 1024})
	require.NoError(t, err)

	sink := &captureSink{}
	result, err := conv.Convert(context.Background(), src, sink)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), result.Frames)
	assert.Len(t, sink.samples, 5000*2)
}

func TestConvertCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv, err := New(&Config{Mode: Surround51})
	require.NoError(t, err)

	sink := &captureSink{}
	_, err = conv.Convert(ctx, newSineSource(50000), sink)
	require.ErrorIs(t, err, context.Canceled)

	// The chunk in flight completed before the cancellation was observed.
	assert.LessOrEqual(t, sink.writes, 1)
}

func TestConvertProgressReporting(t *testing.T) {
	var percents []int
	var stages []string

	conv, err := New(&Config{
		Mode:        Surround51Fast,
		ChunkFrames: 1024,
		Progress: func(percent int, stage string) {
			percents = append(percents, percent)
			stages = append(stages, stage)
		},
	})
	require.NoError(t, err)

	_, err = conv.Convert(context.Background(), newSineSource(10240), &captureSink{})
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1], "terminal callback is exactly 100")
	assert.Equal(t, "complete", stages[len(stages)-1])

	for i, p := range percents[:len(percents)-1] {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 99, "running callbacks never reach 100")
		if i > 0 {
			assert.GreaterOrEqual(t, p, percents[i-1], "progress must not regress")
		}
	}
}

func TestConvertSinkFailure(t *testing.T) {
	conv, err := New(&Config{Mode: Surround51, ChunkFrames: 1024})
	require.NoError(t, err)

	sink := &captureSink{failAt: 2}
	_, err = conv.Convert(context.Background(), newSineSource(10000), sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode failed")
}

func TestConvertReusableAcrossRuns(t *testing.T) {
	conv, err := New(&Config{Mode: Surround71, ChunkFrames: 1024, Workers: 2})
	require.NoError(t, err)

	first := &captureSink{}
	_, err = conv.Convert(context.Background(), newSineSource(4000), first)
	require.NoError(t, err)

	second := &captureSink{}
	_, err = conv.Convert(context.Background(), newSineSource(4000), second)
	require.NoError(t, err)

	// Identical input must give identical output: no state leaks between
	// conversions.
	assert.Equal(t, first.samples, second.samples)
}

func TestConvertFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	const frames = 22050
	w, err := encode.Create(inPath, ProcessingRate, encode.BitDepth16, 2, 1.0)
	require.NoError(t, err)
	stereo := make([]float64, frames*2)
	for i := 0; i < frames; i++ {
		s := 0.5 * math.Sin(2*math.Pi*440*float64(i)/ProcessingRate)
		stereo[i*2] = s
		stereo[i*2+1] = s
	}
	require.NoError(t, w.WriteFrames(stereo, 0))
	require.NoError(t, w.Close())

	conv, err := New(&Config{Mode: Surround51})
	require.NoError(t, err)

	result, err := conv.ConvertFile(context.Background(), inPath, outPath)
	require.NoError(t, err)

	assert.Equal(t, outPath, result.OutputPath)
	assert.Equal(t, 6, result.ChannelCount)
	assert.InDelta(t, frames, result.Frames, 1)
	assert.FileExists(t, outPath)
}

func TestConvertFileRemovesOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	// Valid extension, invalid content.
	require.NoError(t, os.WriteFile(inPath, []byte("RIFFgarbage"), 0o644))

	conv, err := New(&Config{Mode: Surround51})
	require.NoError(t, err)

	_, err = conv.ConvertFile(context.Background(), inPath, outPath)
	require.Error(t, err)
	assert.NoFileExists(t, outPath)
}

func TestConvertAlreadyRunning(t *testing.T) {
	conv, err := New(&Config{Mode: Binaural})
	require.NoError(t, err)

	conv.running.Store(true)
	_, err = conv.Convert(context.Background(), newSineSource(10), &captureSink{})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
