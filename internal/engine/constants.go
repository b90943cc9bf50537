package engine

// Channel gains for the filtered surround modes.
const (
	// centerGain scales the mono downmix feeding the center channel.
	centerGain = 0.9

	// frontGain scales the front left/right channels.
	frontGain = 0.9

	// lfeGain scales the low-passed mono downmix feeding the LFE channel.
	lfeGain = 0.7

	// rearGain scales the high-passed rear channels.
	rearGain = 0.35

	// immersiveRearMultiplier boosts the rears in the immersive 5.1 mode.
	immersiveRearMultiplier = 1.8

	// sideGain scales the band-passed 7.1 side channels.
	sideGain = 0.55
)

// Binaural mid/side mix weights.
const (
	binauralMidGain  = 0.5
	binauralSideGain = 0.6
)

// Filterless fast 5.1 mode weights. The mode trades biquad accuracy for
// branch-free arithmetic, for paths where throughput matters more than
// spectral shaping.
const (
	fastFrontGain      = 0.85
	fastCenterGain     = 0.45
	fastLFEGain        = 0.35
	fastWidthGain      = 0.5
	fastRearDirectGain = 0.3
	fastRearWidthGain  = 0.4
)

// monoDownmixGain halves the L+R sum for center/LFE derivation.
const monoDownmixGain = 0.5

// Channel counts per layout.
const (
	stereoChannels     = 2
	surround51Channels = 6
	surround71Channels = 8
)
