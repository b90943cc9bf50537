package pipeline

import "sync"

// ChunkBuffers holds the pre-allocated scratch buffers for one chunk's
// trip through the scheduler: interleaved stereo in, interleaved
// multichannel out.
type ChunkBuffers struct {
	// In holds chunkFrames*2 interleaved stereo samples.
	In []float64

	// Out holds chunkFrames*outChannels interleaved output samples.
	Out []float64
}

// BufferPool hands out reusable ChunkBuffers, avoiding per-chunk
// allocations in the streaming loop. Acquire and Release may be called from
// different goroutines; sync.Pool provides the required mutual exclusion.
//
// Ownership discipline: a buffer set is borrowed for the duration of one
// chunk's processing and must not be retained or read after Release.
type BufferPool struct {
	pool        sync.Pool
	chunkFrames int
	outChannels int
}

// NewBufferPool creates a pool producing buffers sized for chunkFrames
// frames and outChannels output channels.
func NewBufferPool(chunkFrames, outChannels int) *BufferPool {
	p := &BufferPool{
		chunkFrames: chunkFrames,
		outChannels: outChannels,
	}
	p.pool.New = func() any {
		return &ChunkBuffers{
			In:  make([]float64, chunkFrames*stereoChannels),
			Out: make([]float64, chunkFrames*outChannels),
		}
	}
	return p
}

// Acquire borrows a buffer set from the pool. Contents are unspecified;
// callers overwrite before reading.
func (p *BufferPool) Acquire() *ChunkBuffers {
	b, ok := p.pool.Get().(*ChunkBuffers)
	if !ok {
		panic("pipeline: unexpected pool element type")
	}
	return b
}

// Release returns a buffer set to the pool. The caller must not alias the
// slices afterwards; releasing the same set twice is a caller bug.
func (p *BufferPool) Release(b *ChunkBuffers) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}

// ChunkFrames returns the frame capacity each buffer set is sized for.
func (p *BufferPool) ChunkFrames() int {
	return p.chunkFrames
}
