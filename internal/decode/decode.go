// Package decode provides the input side of the conversion pipeline: format
// decoders that expose compressed or PCM audio files as a stream of
// normalized interleaved samples, plus an adapter that collapses arbitrary
// channel layouts to stereo at the fixed processing rate.
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source is a stream of interleaved PCM samples normalized to [-1, 1].
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int

	// Channels count (e.g. 1=mono, 2=stereo).
	Channels() int

	// TotalFrames reports the stream length in frames for progress
	// calculation, or 0 when unknown.
	TotalFrames() int64

	// ReadSamples fills dst with interleaved samples. Returns the number of
	// samples (not frames) written; when n == 0 with err == io.EOF the
	// stream is finished. n is always a multiple of Channels().
	ReadSamples(dst []float64) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Errors returned by the decode layer.
var (
	// ErrUnsupportedFormat indicates the file extension maps to no decoder.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrInvalidFile indicates the file could not be parsed as its format.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Open opens an audio file and selects a decoder by extension.
// Supported: .wav, .mp3, .ogg/.oga.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	var src Source
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		src, err = newWAVSource(f)
	case ".mp3":
		src, err = newMP3Source(f)
	case ".ogg", ".oga":
		src, err = newVorbisSource(f)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return src, nil
}
