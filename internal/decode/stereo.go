package decode

import (
	"io"
	"log/slog"
	"sync"

	"github.com/tphakala/go-audio-upmixer/internal/dsp"
	"github.com/tphakala/go-audio-upmixer/internal/simdops"
)

const (
	monoChannels   = 1
	stereoChannels = 2

	// adapterReadFrames is the frame granularity of upstream reads.
	adapterReadFrames = 4096
)

// stereoAdapter wraps a Source and presents it as stereo at a fixed target
// rate: mono input is duplicated to both channels, wider layouts are
// collapsed to channels 0 and 1, and rate mismatches are bridged with a
// cubic Hermite resampler per channel.
type stereoAdapter struct {
	src        Source
	targetRate int

	// Non-nil only when the source rate differs from the target.
	resampleL *dsp.CubicResampler
	resampleR *dsp.CubicResampler

	readBuf     []float64
	left, right []float64
	pending     []float64
	eof         bool

	warnedRate sync.Once
	ops        *simdops.Ops[float64]
}

// AdaptStereo returns src itself when it is already stereo at targetRate,
// otherwise a converting wrapper. Closing the wrapper closes src.
func AdaptStereo(src Source, targetRate int) Source {
	if src.Channels() == stereoChannels && src.SampleRate() == targetRate {
		return src
	}

	a := &stereoAdapter{
		src:        src,
		targetRate: targetRate,
		readBuf:    make([]float64, adapterReadFrames*src.Channels()),
		left:       make([]float64, adapterReadFrames),
		right:      make([]float64, adapterReadFrames),
		ops:        simdops.For[float64](),
	}
	if src.SampleRate() != targetRate {
		a.resampleL = dsp.NewCubicResampler(float64(src.SampleRate()), float64(targetRate))
		a.resampleR = dsp.NewCubicResampler(float64(src.SampleRate()), float64(targetRate))
	}
	return a
}

func (a *stereoAdapter) SampleRate() int { return a.targetRate }
func (a *stereoAdapter) Channels() int   { return stereoChannels }

func (a *stereoAdapter) TotalFrames() int64 {
	total := a.src.TotalFrames()
	if total == 0 || a.resampleL == nil {
		return total
	}
	return int64(float64(total) * a.resampleL.Ratio())
}

func (a *stereoAdapter) ReadSamples(dst []float64) (int, error) {
	for len(a.pending) < len(dst) && !a.eof {
		if err := a.fill(); err != nil {
			if err == io.EOF {
				a.eof = true
				break
			}
			return 0, err
		}
	}

	n := copy(dst, a.pending)
	n -= n % stereoChannels
	remaining := copy(a.pending, a.pending[n:])
	a.pending = a.pending[:remaining]

	if n == 0 && a.eof {
		return 0, io.EOF
	}
	return n, nil
}

// fill reads one upstream chunk, converts it, and appends the converted
// interleaved stereo samples to the pending buffer.
func (a *stereoAdapter) fill() error {
	n, err := a.src.ReadSamples(a.readBuf)
	if n == 0 {
		if err == nil {
			return io.EOF
		}
		return err
	}

	channels := a.src.Channels()
	frames := n / channels

	// Collapse to stereo: take channels 0 and 1, or duplicate mono.
	left := a.left[:frames]
	right := a.right[:frames]
	if channels == monoChannels {
		copy(left, a.readBuf[:frames])
		copy(right, a.readBuf[:frames])
	} else {
		for i := 0; i < frames; i++ {
			left[i] = a.readBuf[i*channels]
			right[i] = a.readBuf[i*channels+1]
		}
	}

	if a.resampleL != nil {
		a.warnedRate.Do(func() {
			slog.Warn("input sample rate differs from processing rate, resampling",
				"inputRate", a.src.SampleRate(),
				"targetRate", a.targetRate,
			)
		})
		left = a.resampleL.Process(left)
		right = a.resampleR.Process(right)
	}

	start := len(a.pending)
	a.pending = append(a.pending, make([]float64, len(left)*stereoChannels)...)
	a.ops.Interleave2(a.pending[start:], left, right)
	return nil
}

func (a *stereoAdapter) Close() error {
	return a.src.Close()
}
