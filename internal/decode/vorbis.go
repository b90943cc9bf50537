package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// vorbisSource streams an Ogg Vorbis file through jfreymuth/oggvorbis,
// which decodes directly to interleaved float32 in [-1, 1].
type vorbisSource struct {
	file   *os.File
	reader *oggvorbis.Reader
	buf    []float32
}

func newVorbisSource(f *os.File) (*vorbisSource, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &vorbisSource{file: f, reader: reader}, nil
}

func (s *vorbisSource) SampleRate() int { return s.reader.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.reader.Channels() }

func (s *vorbisSource) TotalFrames() int64 {
	return s.reader.Length()
}

func (s *vorbisSource) ReadSamples(dst []float64) (int, error) {
	if cap(s.buf) < len(dst) {
		s.buf = make([]float32, len(dst))
	}
	s.buf = s.buf[:len(dst)]

	n, err := s.reader.Read(s.buf)
	if n == 0 {
		if err == nil || err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("failed to read Vorbis data: %w", err)
	}

	// Whole frames only; oggvorbis already guarantees this.
	n -= n % s.reader.Channels()
	for i := 0; i < n; i++ {
		dst[i] = float64(s.buf[i])
	}
	return n, nil
}

func (s *vorbisSource) Close() error {
	return s.file.Close()
}
