package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Valid output bit depths.
var validBitDepths = []int{16, 24, 32}

// Worker and chunk bounds mirrored from the pipeline package.
const (
	maxWorkers     = 16
	minChunkFrames = 256
	maxChunkFrames = 1 << 20
)

// Load reads the YAML profile file at path and returns a validated [Profile].
// Unset fields fall back to [Default] values before validation.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	p, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return p, nil
}

// LoadFromReader decodes a YAML profile from r and validates the result.
// Useful in tests where profiles are constructed from string literals.
func LoadFromReader(r io.Reader) (*Profile, error) {
	p := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that p contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(p *Profile) error {
	var errs []error

	if !p.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("mode %q is invalid; valid values: binaural, surround51, surround51-immersive, surround71, surround51-fast", p.Mode))
	}
	if p.Workers < 1 || p.Workers > maxWorkers {
		errs = append(errs, fmt.Errorf("workers %d is out of range [1, %d]", p.Workers, maxWorkers))
	}
	if p.ChunkFrames < minChunkFrames || p.ChunkFrames > maxChunkFrames {
		errs = append(errs, fmt.Errorf("chunk_frames %d is out of range [%d, %d]", p.ChunkFrames, minChunkFrames, maxChunkFrames))
	}

	validDepth := false
	for _, d := range validBitDepths {
		if p.BitDepth == d {
			validDepth = true
			break
		}
	}
	if !validDepth {
		errs = append(errs, fmt.Errorf("bit_depth %d is invalid; valid values: 16, 24, 32", p.BitDepth))
	}

	if p.OutputGain <= 0 {
		errs = append(errs, fmt.Errorf("output_gain %v must be positive", p.OutputGain))
	}
	if !p.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", p.LogLevel))
	}

	return errors.Join(errs...)
}
