// Package dsp implements the stateful filter primitives used by the
// channel synthesis engine: a second-order IIR (biquad) section with
// independently addressable left/right state, and the named filter bank
// each surround mode requires.
package dsp

import "math"

// FilterType selects the biquad transfer function.
type FilterType int

const (
	// Lowpass passes frequencies below the cutoff.
	Lowpass FilterType = iota

	// Highpass passes frequencies above the cutoff.
	Highpass

	// Bandpass passes a band around the center frequency
	// (constant 0 dB peak gain variant).
	Bandpass
)

// Side names one of the two independent state pairs of a Biquad.
// Left and right channel samples must never share a state pair.
type Side int

const (
	// Left selects the left-channel state pair.
	Left Side = iota

	// Right selects the right-channel state pair.
	Right
)

const sideCount = 2

// DefaultQ is the Butterworth quality factor used by most filters in the bank.
const DefaultQ = 0.707

// Biquad is a second-order IIR filter using the transposed direct-form-II
// topology for numerical stability. Coefficients are shared between the two
// sides; the running state (z1, z2) is kept per side so one filter instance
// can process a stereo pair without cross-channel leakage.
//
// All arithmetic is float64. A Biquad must not be shared between goroutines.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	z1 [sideCount]float64
	z2 [sideCount]float64
}

// NewBiquad creates a filter configured with the given design parameters.
func NewBiquad(typ FilterType, cutoffHz, q, sampleRate float64) *Biquad {
	f := &Biquad{}
	f.Configure(typ, cutoffHz, q, sampleRate)
	return f
}

// Configure recomputes the coefficients using the standard audio-EQ biquad
// design equations and resets both state pairs to silence. Resetting on
// reconfiguration avoids a transient click from stale state.
//
// Behavior for cutoff outside (0, sampleRate/2) or q <= 0 is undefined;
// callers validate ranges before configuring.
func (f *Biquad) Configure(typ FilterType, cutoffHz, q, sampleRate float64) {
	omega := 2 * math.Pi * cutoffHz / sampleRate
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64

	switch typ {
	case Lowpass:
		b0 = (1 - cosOmega) / 2
		b1 = 1 - cosOmega
		b2 = (1 - cosOmega) / 2
	case Highpass:
		b0 = (1 + cosOmega) / 2
		b1 = -(1 + cosOmega)
		b2 = (1 + cosOmega) / 2
	case Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	}

	a0 = 1 + alpha
	a1 = -2 * cosOmega
	a2 = 1 - alpha

	// Normalize by a0 so the recurrence needs no division.
	invA0 := 1 / a0
	f.b0 = b0 * invA0
	f.b1 = b1 * invA0
	f.b2 = b2 * invA0
	f.a1 = a1 * invA0
	f.a2 = a2 * invA0

	f.Reset()
}

// Reset zeroes the running state of both sides. Coefficients are kept.
func (f *Biquad) Reset() {
	f.z1 = [sideCount]float64{}
	f.z2 = [sideCount]float64{}
}

// ProcessOne filters a single sample through the named side's state pair.
// Transposed direct-form-II update:
//
//	y  = b0*x + z1
//	z1 = b1*x - a1*y + z2
//	z2 = b2*x - a2*y
//
// O(1) and allocation-free; safe for per-sample hot-path use.
func (f *Biquad) ProcessOne(x float64, side Side) float64 {
	y := f.b0*x + f.z1[side]
	f.z1[side] = f.b1*x - f.a1*y + f.z2[side]
	f.z2[side] = f.b2*x - f.a2*y
	return y
}

// ProcessBuffer filters src into dst through the named side's state pair.
// Semantically identical to len(src) calls to ProcessOne. dst and src may
// alias; dst must be at least as long as src.
func (f *Biquad) ProcessBuffer(dst, src []float64, side Side) {
	b0, b1, b2 := f.b0, f.b1, f.b2
	a1, a2 := f.a1, f.a2
	z1, z2 := f.z1[side], f.z2[side]

	for i, x := range src {
		y := b0*x + z1
		z1 = b1*x - a1*y + z2
		z2 = b2*x - a2*y
		dst[i] = y
	}

	f.z1[side] = z1
	f.z2[side] = z2
}

// Coefficients returns the normalized filter coefficients (b0, b1, b2, a1, a2).
func (f *Biquad) Coefficients() (b0, b1, b2, a1, a2 float64) {
	return f.b0, f.b1, f.b2, f.a1, f.a2
}

// ImpulseResponse returns the first n samples of the filter's impulse
// response, computed on a scratch copy so the running state is untouched.
// Used by analysis tooling, not by the processing hot path.
func (f *Biquad) ImpulseResponse(n int) []float64 {
	scratch := *f
	scratch.Reset()

	resp := make([]float64, n)
	if n == 0 {
		return resp
	}
	resp[0] = scratch.ProcessOne(1, Left)
	for i := 1; i < n; i++ {
		resp[i] = scratch.ProcessOne(0, Left)
	}
	return resp
}
