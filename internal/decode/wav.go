package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCM normalization constants per bit depth.
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// wavReadFrames is the frame granularity of each PCMBuffer read.
const wavReadFrames = 4096

// wavSource streams a PCM WAV file through go-audio/wav, normalizing
// integer samples to [-1, 1].
type wavSource struct {
	file        *os.File
	decoder     *wav.Decoder
	channels    int
	sampleRate  int
	totalFrames int64
	invMaxVal   float64

	intBuf *audio.IntBuffer
}

func newWAVSource(f *os.File) (*wavSource, error) {
	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrInvalidFile)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	var maxVal float64
	switch bitDepth {
	case bitsPerSample16:
		maxVal = maxInt16
	case bitsPerSample24:
		maxVal = maxInt24
	case bitsPerSample32:
		maxVal = maxInt32
	default:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidFile, bitDepth)
	}

	// Duration is best-effort; progress falls back to indeterminate on error.
	var totalFrames int64
	if duration, err := decoder.Duration(); err == nil {
		totalFrames = int64(duration.Seconds() * float64(format.SampleRate))
	}

	return &wavSource{
		file:        f,
		decoder:     decoder,
		channels:    format.NumChannels,
		sampleRate:  format.SampleRate,
		totalFrames: totalFrames,
		invMaxVal:   1 / maxVal,
		intBuf: &audio.IntBuffer{
			Format: format,
			Data:   make([]int, wavReadFrames*format.NumChannels),
		},
	}, nil
}

func (s *wavSource) SampleRate() int    { return s.sampleRate }
func (s *wavSource) Channels() int      { return s.channels }
func (s *wavSource) TotalFrames() int64 { return s.totalFrames }

func (s *wavSource) ReadSamples(dst []float64) (int, error) {
	want := len(dst)
	if cap(s.intBuf.Data) < want {
		s.intBuf.Data = make([]int, want)
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.decoder.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("failed to read WAV data: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	// n counts individual samples, not frames.
	samples := n - n%s.channels
	if samples > want {
		samples = want
	}
	for i := 0; i < samples; i++ {
		dst[i] = float64(s.intBuf.Data[i]) * s.invMaxVal
	}
	return samples, nil
}

func (s *wavSource) Close() error {
	return s.file.Close()
}
