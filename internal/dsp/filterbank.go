package dsp

// Filter bank design parameters. The cutoffs shape the synthesized surround
// channels: sub-bass only into the LFE, upper spectrum into the rears, and
// a mid band into the 7.1 sides.
const (
	// LFECutoffHz is the low-pass cutoff for the LFE channel.
	LFECutoffHz = 120.0

	// RearCutoffHz is the high-pass cutoff for the rear channels.
	RearCutoffHz = 200.0

	// SideCenterHz is the band-pass center frequency for the 7.1 side channels.
	SideCenterHz = 1500.0

	// SideQ is the band-pass quality factor for the side channels.
	SideQ = 1.0
)

// FilterBank is the set of named filters a surround output mode requires.
// One bank belongs to exactly one scheduling unit (a sequential run or a
// single worker); banks are never shared across goroutines, which keeps the
// per-sample path free of locking.
//
// The LFE filter processes the mono downmix and uses only its Left state
// pair. The rear and side filters carry independent left/right state.
type FilterBank struct {
	LFE  *Biquad
	Rear *Biquad
	Side *Biquad
}

// NewFilterBank creates a bank designed for the given sample rate.
func NewFilterBank(sampleRate float64) *FilterBank {
	return &FilterBank{
		LFE:  NewBiquad(Lowpass, LFECutoffHz, DefaultQ, sampleRate),
		Rear: NewBiquad(Highpass, RearCutoffHz, DefaultQ, sampleRate),
		Side: NewBiquad(Bandpass, SideCenterHz, SideQ, sampleRate),
	}
}

// Reset zeroes the state of every filter in the bank.
func (fb *FilterBank) Reset() {
	fb.LFE.Reset()
	fb.Rear.Reset()
	fb.Side.Reset()
}
