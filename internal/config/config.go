// Package config provides the YAML conversion-profile schema and loader for
// the upmix command line tools. A profile captures the settings of a
// repeatable batch conversion so they don't have to be re-typed as flags.
package config

// LogLevel controls log verbosity for the conversion tools.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Mode names an output mode in a profile file.
type Mode string

const (
	ModeBinaural            Mode = "binaural"
	ModeSurround51          Mode = "surround51"
	ModeSurround51Immersive Mode = "surround51-immersive"
	ModeSurround71          Mode = "surround71"
	ModeSurround51Fast      Mode = "surround51-fast"
)

// IsValid reports whether m is a recognised output mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeBinaural, ModeSurround51, ModeSurround51Immersive,
		ModeSurround71, ModeSurround51Fast:
		return true
	}
	return false
}

// Profile is the root configuration structure for a conversion run.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Profile struct {
	// Mode selects the output channel synthesis mode.
	Mode Mode `yaml:"mode"`

	// Workers is the parallel worker count for chunk processing.
	Workers int `yaml:"workers"`

	// ChunkFrames is the number of frames per scheduling chunk.
	ChunkFrames int `yaml:"chunk_frames"`

	// BitDepth is the output PCM bit depth (16, 24 or 32).
	BitDepth int `yaml:"bit_depth"`

	// OutputGain scales output samples before clamping. 1.0 = unity.
	OutputGain float64 `yaml:"output_gain"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr, when set, serves Prometheus metrics on this address
	// (e.g. ":9090") for the duration of the conversion.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns a profile with the documented defaults.
func Default() Profile {
	return Profile{
		Mode:        ModeSurround51,
		Workers:     2,
		ChunkFrames: 4096,
		BitDepth:    16,
		OutputGain:  1.0,
		LogLevel:    LogInfo,
	}
}
