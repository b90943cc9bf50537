package decode

import (
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits 16-bit little-endian stereo PCM.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
	mp3BytesPerFrame  = mp3Channels * mp3BytesPerSample
	int16Scale        = 32768.0
)

// mp3Source streams an MP3 file through hajimehoshi/go-mp3.
type mp3Source struct {
	file    *os.File
	decoder *gomp3.Decoder
	buf     []byte
}

func newMP3Source(f *os.File) (*mp3Source, error) {
	decoder, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &mp3Source{file: f, decoder: decoder}, nil
}

func (s *mp3Source) SampleRate() int { return s.decoder.SampleRate() }
func (s *mp3Source) Channels() int   { return mp3Channels }

func (s *mp3Source) TotalFrames() int64 {
	// Length reports the decoded byte size of the whole stream.
	return s.decoder.Length() / mp3BytesPerFrame
}

func (s *mp3Source) ReadSamples(dst []float64) (int, error) {
	bytesNeeded := len(dst) * mp3BytesPerSample
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := io.ReadFull(s.decoder, s.buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("failed to read MP3 data: %w", err)
	}

	samples := n / mp3BytesPerSample
	// Trailing partial sample from a truncated stream is dropped.
	samples -= samples % mp3Channels
	if samples == 0 {
		return 0, io.EOF
	}

	for i := 0; i < samples; i++ {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float64(v) / int16Scale
	}
	return samples, nil
}

func (s *mp3Source) Close() error {
	return s.file.Close()
}
