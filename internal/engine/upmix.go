// Package engine implements the per-frame channel synthesis algorithms that
// expand a stereo frame into a multichannel surround frame.
package engine

import (
	"github.com/tphakala/go-audio-upmixer/internal/dsp"
)

// Mode selects the channel synthesis algorithm and output layout.
type Mode int

const (
	// ModeBinaural produces a 2-channel mid/side widened stereo frame.
	ModeBinaural Mode = iota

	// ModeSurround51 produces a 6-channel frame (FL, FR, C, LFE, BL, BR).
	ModeSurround51

	// ModeSurround51Immersive is ModeSurround51 with stronger rear gain.
	ModeSurround51Immersive

	// ModeSurround71 produces an 8-channel frame (FL, FR, C, LFE, BL, BR, SL, SR).
	ModeSurround71

	// ModeSurround51Fast produces the 6-channel layout using filterless
	// arithmetic-only synthesis.
	ModeSurround51Fast
)

// ChannelCount returns the number of output channels the mode emits.
// Every mode emits exactly 2, 6 or 8 channels.
func (m Mode) ChannelCount() int {
	switch m {
	case ModeBinaural:
		return stereoChannels
	case ModeSurround71:
		return surround71Channels
	default:
		return surround51Channels
	}
}

// Filtered reports whether the mode runs samples through a filter bank.
func (m Mode) Filtered() bool {
	switch m {
	case ModeSurround51, ModeSurround51Immersive, ModeSurround71:
		return true
	}
	return false
}

// Upmixer synthesizes multichannel frames from stereo frames for one mode.
// Filtered modes own a private FilterBank; because the bank is stateful, a
// single Upmixer must process a contiguous frame range and must not be
// shared between goroutines. The parallel scheduler creates one Upmixer per
// worker for exactly this reason.
type Upmixer struct {
	mode     Mode
	rearMult float64
	bank     *dsp.FilterBank
}

// NewUpmixer creates an upmixer for the given mode and processing rate.
// Filterless modes carry no bank.
func NewUpmixer(mode Mode, sampleRate float64) *Upmixer {
	u := &Upmixer{
		mode:     mode,
		rearMult: 1.0,
	}
	if mode == ModeSurround51Immersive {
		u.rearMult = immersiveRearMultiplier
	}
	if mode.Filtered() {
		u.bank = dsp.NewFilterBank(sampleRate)
	}
	return u
}

// Mode returns the synthesis mode.
func (u *Upmixer) Mode() Mode {
	return u.mode
}

// ChannelCount returns the number of output channels per frame.
func (u *Upmixer) ChannelCount() int {
	return u.mode.ChannelCount()
}

// Reset zeroes all filter state, as if no samples had been processed.
func (u *Upmixer) Reset() {
	if u.bank != nil {
		u.bank.Reset()
	}
}

// ProcessFrame synthesizes one output frame from a stereo frame. out must
// have length ChannelCount(). Every output sample is hard-clamped to
// [-1, 1]; out-of-range values saturate silently, matching PCM behavior.
func (u *Upmixer) ProcessFrame(left, right float64, out []float64) {
	switch u.mode {
	case ModeBinaural:
		u.binauralFrame(left, right, out)
	case ModeSurround51Fast:
		u.fast51Frame(left, right, out)
	case ModeSurround71:
		u.filteredFrame(left, right, out, true)
	default:
		u.filteredFrame(left, right, out, false)
	}
}

// ProcessInterleaved synthesizes frames from interleaved stereo src into
// interleaved multichannel dst. src holds frames*2 samples and dst at least
// frames*ChannelCount(). Filter state carries across the whole range.
func (u *Upmixer) ProcessInterleaved(dst, src []float64, frames int) {
	channels := u.ChannelCount()
	for i := 0; i < frames; i++ {
		u.ProcessFrame(src[i*stereoChannels], src[i*stereoChannels+1], dst[i*channels:(i+1)*channels])
	}
}

// binauralFrame widens the stereo image with a mid/side mix. No filters.
func (u *Upmixer) binauralFrame(left, right float64, out []float64) {
	mid := (left + right) * binauralMidGain
	side := (left - right) * binauralSideGain
	out[0] = clamp(mid + side)
	out[1] = clamp(mid - side)
}

// fast51Frame synthesizes the 5.1 layout with arithmetic only: zero
// per-sample allocation and branching, no filter state.
func (u *Upmixer) fast51Frame(left, right float64, out []float64) {
	width := (left - right) * fastWidthGain
	out[0] = clamp(left * fastFrontGain)
	out[1] = clamp(right * fastFrontGain)
	out[2] = clamp((left + right) * fastCenterGain)
	out[3] = clamp((left + right) * fastLFEGain)
	out[4] = clamp(left*fastRearDirectGain + width*fastRearWidthGain)
	out[5] = clamp(right*fastRearDirectGain - width*fastRearWidthGain)
}

// filteredFrame synthesizes the filtered 5.1/7.1 layouts. The LFE filter
// runs on the mono downmix; the rear and side filters keep independent
// left/right state inside the bank.
func (u *Upmixer) filteredFrame(left, right float64, out []float64, sides bool) {
	mono := (left + right) * monoDownmixGain

	out[0] = clamp(left * frontGain)
	out[1] = clamp(right * frontGain)
	out[2] = clamp(mono * centerGain)
	out[3] = clamp(u.bank.LFE.ProcessOne(mono, dsp.Left) * lfeGain)
	out[4] = clamp(u.bank.Rear.ProcessOne(left, dsp.Left) * rearGain * u.rearMult)
	out[5] = clamp(u.bank.Rear.ProcessOne(right, dsp.Right) * rearGain * u.rearMult)

	if sides {
		out[6] = clamp(u.bank.Side.ProcessOne(left, dsp.Left) * sideGain)
		out[7] = clamp(u.bank.Side.ProcessOne(right, dsp.Right) * sideGain)
	}
}

// clamp saturates a sample to the normalized PCM range [-1, 1].
func clamp(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}
