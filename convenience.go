package upmixer

import (
	"context"
	"fmt"

	"github.com/tphakala/go-audio-upmixer/internal/engine"
	"github.com/tphakala/go-audio-upmixer/internal/pipeline"
)

// UpmixBuffer converts a whole in-memory stereo buffer in one call.
// stereo is interleaved (L, R, L, R, ...) and must hold complete frames.
// The result is interleaved in the mode's channel order, same frame count.
//
// Processing is sequential with one persistent filter bank, so the output
// is free of worker-boundary transients. For long buffers where throughput
// matters more, use [UpmixBufferParallel].
func UpmixBuffer(stereo []float64, mode OutputMode) ([]float64, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: unknown output mode %d", ErrInvalidConfig, int(mode))
	}
	if len(stereo)%2 != 0 {
		return nil, fmt.Errorf("%w: stereo buffer holds a partial frame", ErrInvalidConfig)
	}

	frames := len(stereo) / 2
	out := make([]float64, frames*mode.ChannelCount())
	u := engine.NewUpmixer(mode.engineMode(), ProcessingRate)
	u.ProcessInterleaved(out, stereo, frames)
	return out, nil
}

// UpmixBufferParallel converts a whole in-memory stereo buffer using the
// chunked parallel scheduler. workers <= 0 selects the default.
//
// For filtered modes each worker range starts from silent filter state, so
// seams between ranges carry a short settling transient. Filterless modes
// ([Binaural], [Surround51Fast]) are bit-identical to [UpmixBuffer].
func UpmixBufferParallel(stereo []float64, mode OutputMode, workers int) ([]float64, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("%w: unknown output mode %d", ErrInvalidConfig, int(mode))
	}
	if len(stereo)%2 != 0 {
		return nil, fmt.Errorf("%w: stereo buffer holds a partial frame", ErrInvalidConfig)
	}
	if workers <= 0 {
		workers = pipeline.DefaultWorkers
	}

	frames := len(stereo) / 2
	out := make([]float64, frames*mode.ChannelCount())
	sched := pipeline.NewScheduler(mode.engineMode(), ProcessingRate, workers)
	sched.ProcessChunk(out, stereo, frames)
	return out, nil
}

// UpmixFile converts an audio file in one call with default settings.
func UpmixFile(ctx context.Context, inputPath, outputPath string, mode OutputMode) (*ProcessResult, error) {
	conv, err := New(&Config{Mode: mode})
	if err != nil {
		return nil, err
	}
	return conv.ConvertFile(ctx, inputPath, outputPath)
}

// Deinterleave splits an interleaved buffer into per-channel slices.
// len(samples) must be a multiple of channels.
func Deinterleave(samples []float64, channels int) [][]float64 {
	frames := len(samples) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
		for f := 0; f < frames; f++ {
			out[ch][f] = samples[f*channels+ch]
		}
	}
	return out
}

// Interleave merges per-channel slices into one interleaved buffer.
// All channel slices must have equal length.
func Interleave(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float64, frames*len(channels))
	for ch, data := range channels {
		for f, s := range data {
			out[f*len(channels)+ch] = s
		}
	}
	return out
}
