package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterBank(t *testing.T) {
	fb := NewFilterBank(testRate)

	require.NotNil(t, fb.LFE)
	require.NotNil(t, fb.Rear)
	require.NotNil(t, fb.Side)
}

func TestFilterBankReset(t *testing.T) {
	fb := NewFilterBank(testRate)
	ref := NewFilterBank(testRate)

	for i := 0; i < 1000; i++ {
		x := math.Sin(float64(i) * 0.13)
		fb.LFE.ProcessOne(x, Left)
		fb.Rear.ProcessOne(x, Left)
		fb.Rear.ProcessOne(-x, Right)
		fb.Side.ProcessOne(x, Left)
		fb.Side.ProcessOne(-x, Right)
	}
	fb.Reset()

	for i := 0; i < 100; i++ {
		x := math.Sin(float64(i) * 0.29)
		assert.Equal(t, ref.LFE.ProcessOne(x, Left), fb.LFE.ProcessOne(x, Left))
		assert.Equal(t, ref.Rear.ProcessOne(x, Right), fb.Rear.ProcessOne(x, Right))
		assert.Equal(t, ref.Side.ProcessOne(x, Left), fb.Side.ProcessOne(x, Left))
	}
}

func TestFilterBankCorners(t *testing.T) {
	fb := NewFilterBank(testRate)

	// LFE lowpass passes a 50Hz tone and rejects 5kHz.
	assert.Greater(t, steadyPeak(fb.LFE, 50), 0.9)
	assert.Less(t, steadyPeak(fb.LFE, 5000), 0.01)

	// Rear highpass rejects 20Hz and passes 5kHz.
	assert.Less(t, steadyPeak(fb.Rear, 20), 0.05)
	assert.Greater(t, steadyPeak(fb.Rear, 5000), 0.9)

	// Side bandpass peaks near 1.5kHz and rejects both extremes.
	assert.Greater(t, steadyPeak(fb.Side, 1500), 0.9)
	assert.Less(t, steadyPeak(fb.Side, 30), 0.05)
	assert.Less(t, steadyPeak(fb.Side, 15000), 0.2)
}

// steadyPeak runs one second of a sine through f and returns the peak
// magnitude after the settling transient.
func steadyPeak(f *Biquad, freq float64) float64 {
	f.Reset()
	var peak float64
	for i := 0; i < int(testRate); i++ {
		y := f.ProcessOne(math.Sin(2*math.Pi*freq*float64(i)/testRate), Left)
		if a := math.Abs(y); i > 2000 && a > peak {
			peak = a
		}
	}
	f.Reset()
	return peak
}
