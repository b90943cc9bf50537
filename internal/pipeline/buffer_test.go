package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferWriteRead(t *testing.T) {
	b := NewRingBuffer(8)

	b.Write([]float64{1, 2, 3})
	assert.Equal(t, 3, b.Available())

	got := b.Read(2)
	assert.Equal(t, []float64{1, 2}, got)
	assert.Equal(t, 1, b.Available())

	got = b.Read(5)
	assert.Equal(t, []float64{3}, got, "short read returns what is there")
	assert.Equal(t, 0, b.Available())
}

func TestRingBufferReadInto(t *testing.T) {
	b := NewRingBuffer(16)
	b.Write([]float64{1, 2, 3, 4, 5})

	dst := make([]float64, 3)
	n := b.ReadInto(dst)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 3}, dst)

	// Partial fill when fewer samples remain.
	dst = make([]float64, 4)
	n = b.ReadInto(dst)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float64{4, 5}, dst[:n])
}

func TestRingBufferWrapAround(t *testing.T) {
	b := NewRingBuffer(4)

	b.Write([]float64{1, 2, 3})
	assert.Equal(t, []float64{1, 2}, b.Read(2))

	// Next write wraps past the end of the backing array.
	b.Write([]float64{4, 5, 6})
	assert.Equal(t, []float64{3, 4, 5, 6}, b.Read(4))
}

func TestRingBufferGrows(t *testing.T) {
	b := NewRingBuffer(4)

	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i)
	}
	b.Write(samples)

	require.GreaterOrEqual(t, b.Capacity(), 100)
	assert.Equal(t, samples, b.Read(100), "order preserved across growth")
}

func TestRingBufferGrowPreservesWrappedData(t *testing.T) {
	b := NewRingBuffer(4)
	b.Write([]float64{1, 2, 3})
	b.Read(2)
	b.Write([]float64{4, 5}) // wraps

	// Forces a grow while read/write positions are wrapped.
	b.Write([]float64{6, 7, 8, 9})
	assert.Equal(t, []float64{3, 4, 5, 6, 7, 8, 9}, b.Read(7))
}

func TestRingBufferClear(t *testing.T) {
	b := NewRingBuffer(8)
	b.Write([]float64{1, 2, 3})

	b.Clear()
	assert.Equal(t, 0, b.Available())
	assert.Empty(t, b.Read(3))

	b.Write([]float64{7})
	assert.Equal(t, []float64{7}, b.Read(1))
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	b := NewRingBuffer(0)
	assert.GreaterOrEqual(t, b.Capacity(), 1)

	b.Write([]float64{1, 2})
	assert.Equal(t, []float64{1, 2}, b.Read(2))
}
