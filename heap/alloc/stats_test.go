package alloc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_Counters(t *testing.T) {
	a := newTestAllocator(t, 16)

	x := mustMalloc(t, a, 100)
	y := mustMalloc(t, a, 8)
	a.Free(y)
	mustMalloc(t, a, 8)
	_, _, err := a.Realloc(x, 5000)
	require.NoError(t, err)

	s := a.GetStats()
	assert.Equal(t, 4, s.AllocCalls) // Realloc growth goes through Malloc
	assert.Equal(t, 1, s.QuickHits)
	assert.Equal(t, 1, s.FreeCalls) // Realloc's internal free is not a Free call
	assert.Equal(t, 1, s.ReallocCalls)
	assert.Equal(t, 2, s.GrowCalls)
	assert.Equal(t, 1, s.AllocSlowPath)
	assert.Positive(t, s.SplitCount)
	assert.GreaterOrEqual(t, s.PeakLiveBytes, s.LiveBytes)
	assert.Equal(t, s.BytesAllocated-s.BytesFreed, s.LiveBytes)
}

func TestStats_Utilization(t *testing.T) {
	a := newTestAllocator(t, 16)
	assert.Zero(t, a.Utilization())

	x := mustMalloc(t, a, 2000)
	a.Free(x)

	assert.InDelta(t, 2016.0/4096.0, a.Utilization(), 1e-9)
	assert.Zero(t, a.GetStats().LiveBytes)
}

func TestHeapStats(t *testing.T) {
	a := newTestAllocator(t, 16)
	mustMalloc(t, a, 100)
	q := mustMalloc(t, a, 8)
	mustMalloc(t, a, 8)
	a.Free(q)

	hs := a.HeapStats()
	assert.Equal(t, 4096, hs.HeapSize)
	assert.Equal(t, 2, hs.AllocatedCount)
	assert.Equal(t, 112+32, hs.AllocatedBytes)
	assert.Equal(t, 1, hs.QuickCount)
	assert.Equal(t, 1, hs.FreeCount)
	assert.Equal(t, 4080-112-64, hs.LargestFree)
	assert.Zero(t, hs.Fragmentation)
}

func TestPrintStats(t *testing.T) {
	a := newTestAllocator(t, 16)
	mustMalloc(t, a, 5000)

	var buf bytes.Buffer
	a.PrintStats(&buf)

	out := buf.String()
	assert.Contains(t, out, "ALLOCATOR STATISTICS (Default)")
	assert.Contains(t, out, "8,192 bytes (2 pages)")
	assert.Contains(t, out, "Alloc calls:        1")
}
