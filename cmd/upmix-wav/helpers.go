package main

import (
	"log/slog"
	"os"

	upmixer "github.com/tphakala/go-audio-upmixer"
	"github.com/tphakala/go-audio-upmixer/internal/config"
)

// flagOverrides carries the flag values that take precedence over a loaded
// profile. Zero values mean "not set on the command line".
type flagOverrides struct {
	mode    string
	workers int
	chunk   int
	bits    int
	gain    float64
}

// resolveProfile builds the effective profile: defaults, then the YAML file
// if given, then explicit flags on top. The merged result is validated once.
func resolveProfile(path string, flags flagOverrides) (*config.Profile, error) {
	var p *config.Profile
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		p = loaded
	} else {
		def := config.Default()
		p = &def
	}

	if flags.mode != "" {
		p.Mode = config.Mode(flags.mode)
	}
	if flags.workers != 0 {
		p.Workers = flags.workers
	}
	if flags.chunk != 0 {
		p.ChunkFrames = flags.chunk
	}
	if flags.bits != 0 {
		p.BitDepth = flags.bits
	}
	if flags.gain != 0 {
		p.OutputGain = flags.gain
	}

	if err := config.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// converterConfig maps a validated profile to the library configuration.
func converterConfig(p *config.Profile) *upmixer.Config {
	return &upmixer.Config{
		Mode:          parseMode(p.Mode),
		Workers:       p.Workers,
		ChunkFrames:   p.ChunkFrames,
		BitDepth:      p.BitDepth,
		OutputGain:    p.OutputGain,
		EnableMetrics: p.MetricsAddr != "",
	}
}

func parseMode(m config.Mode) upmixer.OutputMode {
	switch m {
	case config.ModeBinaural:
		return upmixer.Binaural
	case config.ModeSurround51:
		return upmixer.Surround51
	case config.ModeSurround51Immersive:
		return upmixer.Surround51Immersive
	case config.ModeSurround71:
		return upmixer.Surround71
	case config.ModeSurround51Fast:
		return upmixer.Surround51Fast
	default:
		return upmixer.Surround51
	}
}

// setupLogging installs a text slog handler at the profile's level.
// The -v flag forces debug regardless of the profile.
func setupLogging(level config.LogLevel, verbose bool) {
	lv := slog.LevelInfo
	switch level {
	case config.LogDebug:
		lv = slog.LevelDebug
	case config.LogWarn:
		lv = slog.LevelWarn
	case config.LogError:
		lv = slog.LevelError
	}
	if verbose {
		lv = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lv,
	})))
}
