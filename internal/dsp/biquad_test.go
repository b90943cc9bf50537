package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

const testRate = 44100.0

func TestBiquadSilenceProducesSilence(t *testing.T) {
	f := NewBiquad(Lowpass, 120, DefaultQ, testRate)

	for i := 0; i < 1000; i++ {
		assert.Zero(t, f.ProcessOne(0, Left))
		assert.Zero(t, f.ProcessOne(0, Right))
	}
}

func TestBiquadConfigureResetsState(t *testing.T) {
	f := NewBiquad(Lowpass, 120, DefaultQ, testRate)

	// Charge the filter state with a signal.
	for i := 0; i < 100; i++ {
		f.ProcessOne(math.Sin(float64(i)*0.1), Left)
	}

	// Reconfiguring with identical parameters must behave like a fresh filter.
	f.Configure(Lowpass, 120, DefaultQ, testRate)
	fresh := NewBiquad(Lowpass, 120, DefaultQ, testRate)

	for i := 0; i < 100; i++ {
		x := math.Sin(float64(i) * 0.07)
		assert.Equal(t, fresh.ProcessOne(x, Left), f.ProcessOne(x, Left))
	}
}

func TestBiquadResetMatchesFreshFilter(t *testing.T) {
	f := NewBiquad(Highpass, 200, DefaultQ, testRate)
	fresh := NewBiquad(Highpass, 200, DefaultQ, testRate)

	for i := 0; i < 500; i++ {
		f.ProcessOne(math.Sin(float64(i)*0.3), Left)
		f.ProcessOne(math.Cos(float64(i)*0.2), Right)
	}
	f.Reset()

	for i := 0; i < 500; i++ {
		x := math.Sin(float64(i) * 0.11)
		assert.Equal(t, fresh.ProcessOne(x, Left), f.ProcessOne(x, Left))
		assert.Equal(t, fresh.ProcessOne(x, Right), f.ProcessOne(x, Right))
	}
}

func TestBiquadSideStateIndependence(t *testing.T) {
	// Processing a signal on the left side must not disturb the right side.
	f := NewBiquad(Bandpass, 1500, 1.0, testRate)
	ref := NewBiquad(Bandpass, 1500, 1.0, testRate)

	for i := 0; i < 2000; i++ {
		left := math.Sin(float64(i) * 0.21)
		right := math.Sin(float64(i) * 0.05)

		f.ProcessOne(left, Left)
		got := f.ProcessOne(right, Right)
		want := ref.ProcessOne(right, Right)
		require.Equal(t, want, got, "right side diverged at sample %d", i)
	}
}

func TestLowpassPassesDCBlocksHighs(t *testing.T) {
	f := NewBiquad(Lowpass, 120, DefaultQ, testRate)

	// DC settles to unity gain.
	var y float64
	for i := 0; i < 44100; i++ {
		y = f.ProcessOne(1.0, Left)
	}
	assert.InDelta(t, 1.0, y, 1e-6, "DC gain should be unity")

	// A 10kHz tone far above the 120Hz corner is strongly attenuated.
	f.Reset()
	var peak float64
	for i := 0; i < 44100; i++ {
		x := math.Sin(2 * math.Pi * 10000 * float64(i) / testRate)
		if a := math.Abs(f.ProcessOne(x, Left)); a > peak && i > 1000 {
			peak = a
		}
	}
	assert.Less(t, peak, 1e-3, "10kHz should be well below -60dB after a 120Hz lowpass")
}

func TestHighpassBlocksDC(t *testing.T) {
	f := NewBiquad(Highpass, 200, DefaultQ, testRate)

	var y float64
	for i := 0; i < 44100; i++ {
		y = f.ProcessOne(1.0, Left)
	}
	assert.InDelta(t, 0.0, y, 1e-6, "DC should be fully rejected")
}

func TestBandpassPeaksAtCenter(t *testing.T) {
	const n = 8192
	f := NewBiquad(Bandpass, 1500, 1.0, testRate)

	fft := fourier.NewFFT(n)
	spectrum := fft.Coefficients(nil, f.ImpulseResponse(n))

	magAt := func(hz float64) float64 {
		bin := int(math.Round(hz / testRate * n))
		return cmplx.Abs(spectrum[bin])
	}

	center := magAt(1500)
	assert.InDelta(t, 1.0, center, 0.05, "center frequency gain should be ~unity")
	assert.Greater(t, center, magAt(200))
	assert.Greater(t, center, magAt(8000))
}

func TestImpulseResponseDecays(t *testing.T) {
	f := NewBiquad(Lowpass, 120, DefaultQ, testRate)
	ir := f.ImpulseResponse(44100)

	require.Len(t, ir, 44100)

	// A stable filter's response dies out: the tail must be negligible
	// next to the head.
	var head, tail float64
	for _, v := range ir[:1000] {
		head += math.Abs(v)
	}
	for _, v := range ir[43000:] {
		tail += math.Abs(v)
	}
	assert.Less(t, tail, head*1e-6)
}

func TestProcessBufferMatchesProcessOne(t *testing.T) {
	a := NewBiquad(Highpass, 200, DefaultQ, testRate)
	b := NewBiquad(Highpass, 200, DefaultQ, testRate)

	src := make([]float64, 512)
	for i := range src {
		src[i] = math.Sin(float64(i) * 0.17)
	}

	dst := make([]float64, len(src))
	a.ProcessBuffer(dst, src, Left)

	for i, x := range src {
		assert.Equal(t, b.ProcessOne(x, Left), dst[i], "sample %d", i)
	}
}

func TestCubicResamplerRatio(t *testing.T) {
	up := NewCubicResampler(44100, 48000)
	assert.InDelta(t, 48000.0/44100.0, up.Ratio(), 1e-12)

	down := NewCubicResampler(48000, 44100)
	assert.InDelta(t, 44100.0/48000.0, down.Ratio(), 1e-12)
}

func TestCubicResamplerOutputLength(t *testing.T) {
	r := NewCubicResampler(48000, 44100)

	input := make([]float64, 48000)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 48000)
	}

	out := r.Process(input)
	assert.InDelta(t, 44100, len(out), 2, "one second in should be ~one second out")
}

func TestCubicResamplerPreservesTone(t *testing.T) {
	r := NewCubicResampler(48000, 44100)

	input := make([]float64, 9600)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / 48000)
	}
	out := r.Process(input)

	// RMS of a resampled full-scale sine stays near 1/sqrt(2).
	var sum float64
	for _, s := range out[100:] {
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(out)-100))
	assert.InDelta(t, 1/math.Sqrt2, rms, 0.02)
}

func TestCubicResamplerReset(t *testing.T) {
	r := NewCubicResampler(44100, 48000)
	input := []float64{0.5, -0.25, 0.75, -0.5, 0.25}

	first := r.Process(input)
	r.Reset()
	second := r.Process(input)

	assert.Equal(t, first, second)
}
