// Package pipeline implements the chunk-parallel scheduling layer: a
// fork/join scheduler that spreads a chunk of frames over a fixed worker
// count, plus the reusable buffers the streaming loop cycles through.
package pipeline

import (
	"sync"

	"github.com/tphakala/go-audio-upmixer/internal/engine"
)

// Scheduler applies the channel synthesis engine to chunks of stereo
// frames. Each worker owns a dedicated engine instance (and therefore its
// own filter bank), so no filter state is ever shared between goroutines,
// and each worker writes exclusively into its own disjoint slice of the
// output buffer, so no write races exist without locking.
//
// Workers are spawned and joined once per chunk. This is a barrier, not a
// long-lived pipeline: no mutable state crosses chunk boundaries except the
// sequential engine's filter state, which by design persists across
// sequential runs.
type Scheduler struct {
	mode    engine.Mode
	workers int

	// workerUnits[i] is owned exclusively by worker i during a chunk.
	workerUnits []*engine.Upmixer

	// seq persists filter state across ProcessChunkSequential calls,
	// guaranteeing continuity for the final partial chunk of a stream.
	seq *engine.Upmixer
}

// NewScheduler creates a scheduler for the given mode and processing rate.
// workers is clamped to [1, MaxWorkers].
func NewScheduler(mode engine.Mode, sampleRate float64, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	s := &Scheduler{
		mode:        mode,
		workers:     workers,
		workerUnits: make([]*engine.Upmixer, workers),
		seq:         engine.NewUpmixer(mode, sampleRate),
	}
	for i := range s.workerUnits {
		s.workerUnits[i] = engine.NewUpmixer(mode, sampleRate)
	}
	return s
}

// Workers returns the configured worker count.
func (s *Scheduler) Workers() int {
	return s.workers
}

// ChannelCount returns the output channels per frame for the scheduled mode.
func (s *Scheduler) ChannelCount() int {
	return s.mode.ChannelCount()
}

// ProcessChunk processes frames stereo frames from src into dst using the
// full worker count. src holds frames*2 interleaved samples, dst at least
// frames*ChannelCount(). Output frame order always equals input frame order.
//
// Worker i handles the half-open frame range
// [i*framesPerWorker, min((i+1)*framesPerWorker, frames)) with
// framesPerWorker = ceil(frames/workers). Each worker starts its range with
// freshly reset filter state: for unfiltered modes the decomposition is
// exactly equivalent to a sequential run; for filtered modes the output
// diverges from a continuous single-filter pass for a short transient after
// each partition seam. That seam behavior is deliberate and documented, not
// a race.
func (s *Scheduler) ProcessChunk(dst, src []float64, frames int) {
	if frames <= 0 {
		return
	}

	workers := s.workers
	if workers > frames {
		workers = frames
	}

	framesPerWorker := (frames + workers - 1) / workers
	channels := s.ChannelCount()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * framesPerWorker
		end := start + framesPerWorker
		if end > frames {
			end = frames
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(unit *engine.Upmixer, start, end int) {
			defer wg.Done()
			unit.Reset()
			unit.ProcessInterleaved(
				dst[start*channels:end*channels],
				src[start*stereoChannels:end*stereoChannels],
				end-start,
			)
		}(s.workerUnits[i], start, end)
	}
	wg.Wait()
}

// ProcessChunkSequential processes a chunk on a single persistent engine.
// Unlike ProcessChunk, filter state carries across the whole chunk and
// across successive sequential calls, so the final partial chunk of a
// stream is synthesized without any partition seam.
func (s *Scheduler) ProcessChunkSequential(dst, src []float64, frames int) {
	if frames <= 0 {
		return
	}
	s.seq.ProcessInterleaved(dst, src, frames)
}

// Reset zeroes the filter state of every engine the scheduler owns.
func (s *Scheduler) Reset() {
	s.seq.Reset()
	for _, u := range s.workerUnits {
		u.Reset()
	}
}
