// Package encode provides the output side of the conversion pipeline: a
// streaming multichannel WAV writer that encodes normalized float frames
// directly to PCM without per-write allocations, patching the header sizes
// on close.
package encode

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/go-audio-upmixer/internal/simdops"
)

// Sink consumes interleaved multichannel frames in [-1, 1]. Frames arrive
// in presentation order with monotonically increasing timestamps.
type Sink interface {
	// WriteFrames encodes interleaved samples; len(samples) must be a
	// multiple of the sink's channel count. ptsMicros is the presentation
	// timestamp of the first frame in microseconds.
	WriteFrames(samples []float64, ptsMicros int64) error

	// Close flushes buffered data and finalizes the container.
	Close() error
}

// ErrInvalidBitDepth indicates an unsupported output bit depth.
var ErrInvalidBitDepth = errors.New("unsupported output bit depth")

// PCM encoding constants.
const (
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	bytesPerSample16 = 2
	bytesPerSample24 = 3
	bytesPerSample32 = 4
	bitsPerByte      = 8

	bitShift8  = 8
	bitShift16 = 16
)

// WAV container constants.
const (
	wavHeaderSize      = 44
	wavRiffHeaderSize  = 36 // file size - 8 = riff header + data size
	wavPCMSubchunkSize = 16
	wavFileSizeOffset  = 4
	wavDataSizeOffset  = 40
	uint32Size         = 4

	// writerBufferSize is the bufio write buffer (256KB).
	writerBufferSize = 256 * 1024

	// scratchFrames sizes the initial encode scratch buffers.
	scratchFrames = 4096
)

// WAVWriter writes PCM data directly without per-sample allocations.
// An optional output gain is applied before clamping and quantization.
type WAVWriter struct {
	w          *bufio.Writer
	f          *os.File
	sampleRate int
	bitDepth   int
	channels   int
	gain       float64
	dataSize   uint32
	maxVal     float64

	scaled  []float64
	byteBuf []byte
	ops     *simdops.Ops[float64]
}

// NewWAVWriter creates a writer and emits the 44-byte header with
// placeholder sizes. gain 1.0 means unity (no scaling pass).
func NewWAVWriter(f *os.File, sampleRate, bitDepth, channels int, gain float64) (*WAVWriter, error) {
	var maxVal float64
	switch bitDepth {
	case BitDepth16:
		maxVal = maxInt16
	case BitDepth24:
		maxVal = maxInt24
	case BitDepth32:
		maxVal = maxInt32
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}

	w := &WAVWriter{
		w:          bufio.NewWriterSize(f, writerBufferSize),
		f:          f,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
		gain:       gain,
		maxVal:     maxVal,
		scaled:     make([]float64, scratchFrames*channels),
		byteBuf:    make([]byte, scratchFrames*channels*(bitDepth/bitsPerByte)),
		ops:        simdops.For[float64](),
	}

	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WAVWriter) writeHeader() error {
	byteRate := w.sampleRate * w.channels * (w.bitDepth / bitsPerByte)
	blockAlign := w.channels * (w.bitDepth / bitsPerByte)

	header := make([]byte, wavHeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0) // Placeholder for file size - 8
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], 1) // AudioFormat (1 = PCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))

	// data subchunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0) // Placeholder for data size

	_, err := w.w.Write(header)
	return err
}

// WriteFrames encodes interleaved normalized samples at the configured bit
// depth. Samples are clamped to [-1, 1] after gain is applied. The WAV
// container carries no timestamps; ptsMicros satisfies the Sink contract
// and frame order alone determines presentation order.
func (w *WAVWriter) WriteFrames(samples []float64, ptsMicros int64) error {
	if len(samples) == 0 {
		return nil
	}

	src := samples
	if w.gain != 1.0 {
		if cap(w.scaled) < len(samples) {
			w.scaled = make([]float64, len(samples))
		}
		w.scaled = w.scaled[:len(samples)]
		w.ops.Scale(w.scaled, samples, w.gain)
		src = w.scaled
	}

	switch w.bitDepth {
	case BitDepth16:
		return w.write16(src)
	case BitDepth24:
		return w.write24(src)
	default:
		return w.write32(src)
	}
}

func (w *WAVWriter) write16(samples []float64) error {
	buf := w.encodeBuf(len(samples) * bytesPerSample16)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(int16(quantize(s, w.maxVal))))
	}
	return w.flushEncoded(buf)
}

func (w *WAVWriter) write24(samples []float64) error {
	buf := w.encodeBuf(len(samples) * bytesPerSample24)
	for i, s := range samples {
		v := quantize(s, w.maxVal)
		buf[i*bytesPerSample24] = byte(v)
		buf[i*bytesPerSample24+1] = byte(v >> bitShift8)
		buf[i*bytesPerSample24+2] = byte(v >> bitShift16)
	}
	return w.flushEncoded(buf)
}

func (w *WAVWriter) write32(samples []float64) error {
	buf := w.encodeBuf(len(samples) * bytesPerSample32)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(int32(quantize(s, w.maxVal))))
	}
	return w.flushEncoded(buf)
}

func (w *WAVWriter) encodeBuf(needed int) []byte {
	if cap(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	return w.byteBuf[:needed]
}

func (w *WAVWriter) flushEncoded(buf []byte) error {
	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// quantize clamps a normalized sample and converts it to an integer PCM
// value at the writer's bit depth.
func quantize(s, maxVal float64) int {
	if s > 1.0 {
		s = 1.0
	} else if s < -1.0 {
		s = -1.0
	}
	return int(s * maxVal)
}

// Close flushes the buffer and updates the WAV header with final sizes.
func (w *WAVWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	fileSize := wavRiffHeaderSize + w.dataSize

	if _, err := w.f.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		return err
	}
	sizeBytes := make([]byte, uint32Size)
	binary.LittleEndian.PutUint32(sizeBytes, fileSize)
	if _, err := w.f.Write(sizeBytes); err != nil {
		return err
	}

	if _, err := w.f.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.f.Write(sizeBytes); err != nil {
		return err
	}

	return w.f.Close()
}

// Create opens path and returns a WAVWriter over it.
func Create(path string, sampleRate, bitDepth, channels int, gain float64) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := NewWAVWriter(f, sampleRate, bitDepth, channels, gain)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}
