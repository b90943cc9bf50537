package upmixer

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-upmixer/internal/engine"
	"github.com/tphakala/go-audio-upmixer/internal/pipeline"
)

// ProcessingRate is the fixed sample rate of the synthesis engine in Hz.
// Inputs at other rates are adapted before processing; output is always
// produced at this rate.
const ProcessingRate = 44100

// OutputMode is the closed set of channel synthesis modes. Each mode fully
// determines the output channel count and order.
type OutputMode int

const (
	// Binaural produces 2 channels (L, R) using a mid/side widening mix.
	Binaural OutputMode = iota

	// Surround51 produces 6 channels (FL, FR, C, LFE, BL, BR).
	Surround51

	// Surround51Immersive is Surround51 with stronger rear gain.
	Surround51Immersive

	// Surround71 produces 8 channels (FL, FR, C, LFE, BL, BR, SL, SR).
	Surround71

	// Surround51Fast produces the 6-channel layout using filterless
	// arithmetic-only synthesis, trading spectral shaping for throughput.
	Surround51Fast
)

// ChannelCount returns the number of output channels the mode emits.
func (m OutputMode) ChannelCount() int {
	return m.engineMode().ChannelCount()
}

// String returns the mode's profile-file name.
func (m OutputMode) String() string {
	switch m {
	case Binaural:
		return "binaural"
	case Surround51:
		return "surround51"
	case Surround51Immersive:
		return "surround51-immersive"
	case Surround71:
		return "surround71"
	case Surround51Fast:
		return "surround51-fast"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// engineMode maps the public mode to the engine's mode enum.
func (m OutputMode) engineMode() engine.Mode {
	switch m {
	case Binaural:
		return engine.ModeBinaural
	case Surround51:
		return engine.ModeSurround51
	case Surround51Immersive:
		return engine.ModeSurround51Immersive
	case Surround71:
		return engine.ModeSurround71
	case Surround51Fast:
		return engine.ModeSurround51Fast
	default:
		return engine.ModeSurround51
	}
}

// valid reports whether m is one of the declared modes.
func (m OutputMode) valid() bool {
	return m >= Binaural && m <= Surround51Fast
}

// ProgressFunc receives conversion progress: percent is 0-99 while running
// and 100 exactly once on success, with a human-readable stage label.
// Percent regression (possible when the stream length was estimated) is
// suppressed by the caller, not here.
type ProgressFunc func(percent int, stage string)

// Config holds conversion configuration.
type Config struct {
	// Mode selects the output channel synthesis mode.
	Mode OutputMode

	// Workers is the parallel worker count per chunk. 0 means the default (2).
	Workers int

	// ChunkFrames is the number of frames per scheduling chunk.
	// 0 means the default (4096).
	ChunkFrames int

	// BitDepth is the output PCM bit depth for file conversion: 16, 24 or
	// 32. 0 means 16.
	BitDepth int

	// OutputGain scales output samples before clamping. 0 means unity.
	OutputGain float64

	// Progress, when non-nil, receives progress callbacks between chunks.
	Progress ProgressFunc

	// EnableMetrics records per-chunk OpenTelemetry metrics on the global
	// meter provider.
	EnableMetrics bool
}

// Common errors returned by the converter.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid upmixer configuration")

	// ErrAlreadyRunning indicates the converter is already mid-conversion.
	ErrAlreadyRunning = errors.New("conversion already in progress")
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Mode.valid() {
		return fmt.Errorf("%w: unknown output mode %d", ErrInvalidConfig, int(c.Mode))
	}

	if c.Workers < 0 || c.Workers > pipeline.MaxWorkers {
		return fmt.Errorf("%w: workers must be in [0, %d]", ErrInvalidConfig, pipeline.MaxWorkers)
	}

	if c.ChunkFrames < 0 {
		return fmt.Errorf("%w: chunk frames must be non-negative", ErrInvalidConfig)
	}

	switch c.BitDepth {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth must be 16, 24 or 32", ErrInvalidConfig)
	}

	if c.OutputGain < 0 {
		return fmt.Errorf("%w: output gain must be non-negative", ErrInvalidConfig)
	}

	return nil
}

// applyDefaults fills zero-valued fields with documented defaults.
func (c *Config) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = pipeline.DefaultWorkers
	}
	if c.ChunkFrames == 0 {
		c.ChunkFrames = pipeline.DefaultChunkFrames
	}
	if c.BitDepth == 0 {
		c.BitDepth = 16
	}
	if c.OutputGain == 0 {
		c.OutputGain = 1.0
	}
}
