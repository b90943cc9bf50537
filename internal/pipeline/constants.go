package pipeline

const (
	// DefaultChunkFrames is the default number of frames per scheduling chunk.
	// Large chunks amortize the per-chunk fork/join cost; 4096 frames is
	// under 100ms at 44.1kHz, which keeps latency acceptable for streaming.
	DefaultChunkFrames = 4096

	// DefaultWorkers is the default parallel worker count.
	DefaultWorkers = 2

	// MaxWorkers bounds the configurable worker count.
	MaxWorkers = 16

	// stereoChannels is the fixed input channel count of every chunk.
	stereoChannels = 2

	// bufferGrowthFactor doubles ring buffer capacity when it fills.
	bufferGrowthFactor = 2
)
