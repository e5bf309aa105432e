package alloc

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/internal/format"
)

// Stats holds running allocator counters.
type Stats struct {
	GrowCalls      int   // Pages added to the heap
	GrowBytes      int64 // Total bytes added via grow
	AllocCalls     int   // Total Malloc() calls
	AllocFastPath  int   // Allocations served without growing
	AllocSlowPath  int   // Allocations that required growing
	QuickHits      int   // Allocations served from a quick list
	FreeCalls      int   // Total Free() calls, plus Realloc(p, 0)
	ReallocCalls   int   // Total Realloc() calls
	BytesAllocated int64 // Total block bytes handed out (including headers)
	BytesFreed     int64 // Total block bytes returned
	LiveBytes      int64 // Block bytes currently allocated
	PeakLiveBytes  int64 // High-water mark of LiveBytes
	SplitCount     int   // Number of block splits
	CoalesceCount  int   // Number of block merges
	QuickFlushes   int   // Number of quick list flushes
}

// HeapStats is a point-in-time breakdown of the heap, computed by walking it.
type HeapStats struct {
	HeapSize       int // Committed bytes, including pad and epilogue
	AllocatedBytes int // Bytes in allocated blocks (quick-listed blocks excluded)
	AllocatedCount int
	FreeBytes      int // Bytes in free blocks
	FreeCount      int
	QuickBytes     int // Bytes parked in quick lists
	QuickCount     int
	LargestFree    int // Largest free block (0 if none)

	// Utilization is PeakLiveBytes / HeapSize, in [0, 1].
	Utilization float64

	// Fragmentation is 1 - LargestFree/FreeBytes, in [0, 1].
	Fragmentation float64
}

// GetStats returns the running counters.
func (a *Allocator) GetStats() Stats {
	return a.stats
}

// Utilization returns the peak live bytes divided by the current heap size,
// or 0 before the heap exists.
func (a *Allocator) Utilization() float64 {
	if len(a.data) == 0 {
		return 0
	}
	return float64(a.stats.PeakLiveBytes) / float64(len(a.data))
}

// HeapStats walks the heap and summarises it.
func (a *Allocator) HeapStats() HeapStats {
	hs := HeapStats{HeapSize: len(a.data), Utilization: a.Utilization()}
	if len(a.data) == 0 {
		return hs
	}

	for blk := format.FirstBlockOffset; blk < a.epilogue(); blk = a.nextBlock(blk) {
		b := a.info(blk)
		if b.Size == 0 {
			break
		}
		switch {
		case b.InQuickList:
			hs.QuickBytes += b.Size
			hs.QuickCount++
		case b.Allocated:
			hs.AllocatedBytes += b.Size
			hs.AllocatedCount++
		default:
			hs.FreeBytes += b.Size
			hs.FreeCount++
			hs.LargestFree = max(hs.LargestFree, b.Size)
		}
	}

	if hs.FreeBytes > 0 {
		hs.Fragmentation = 1 - float64(hs.LargestFree)/float64(hs.FreeBytes)
	}
	return hs
}

// PrintStats writes allocator statistics to w.
func (a *Allocator) PrintStats(w io.Writer) {
	p := message.NewPrinter(language.English)
	s := a.stats
	hs := a.HeapStats()

	p.Fprintf(w, "=== ALLOCATOR STATISTICS (%s) ===\n", a.cfg.Name)
	p.Fprintf(w, "Grow calls:         %d (%d bytes added)\n", s.GrowCalls, s.GrowBytes)
	p.Fprintf(w, "Alloc calls:        %d (fast: %d, slow: %d, quick hits: %d)\n",
		s.AllocCalls, s.AllocFastPath, s.AllocSlowPath, s.QuickHits)
	p.Fprintf(w, "Free calls:         %d\n", s.FreeCalls)
	p.Fprintf(w, "Realloc calls:      %d\n", s.ReallocCalls)
	p.Fprintf(w, "Bytes allocated:    %d\n", s.BytesAllocated)
	p.Fprintf(w, "Bytes freed:        %d\n", s.BytesFreed)
	p.Fprintf(w, "Live bytes:         %d (peak %d)\n", s.LiveBytes, s.PeakLiveBytes)
	p.Fprintf(w, "Block splits:       %d\n", s.SplitCount)
	p.Fprintf(w, "Coalesces:          %d\n", s.CoalesceCount)
	p.Fprintf(w, "Quick flushes:      %d\n", s.QuickFlushes)

	p.Fprintf(w, "\nHeap:\n")
	p.Fprintf(w, "  Size:             %d bytes (%d pages)\n", hs.HeapSize, hs.HeapSize/format.PageSize)
	p.Fprintf(w, "  Allocated:        %d bytes in %d blocks\n", hs.AllocatedBytes, hs.AllocatedCount)
	p.Fprintf(w, "  Quick-listed:     %d bytes in %d blocks\n", hs.QuickBytes, hs.QuickCount)
	p.Fprintf(w, "  Free:             %d bytes in %d blocks (largest %d)\n", hs.FreeBytes, hs.FreeCount, hs.LargestFree)
	p.Fprintf(w, "  Utilization:      %.2f%%\n", hs.Utilization*100)
	p.Fprintf(w, "  Fragmentation:    %.2f%%\n", hs.Fragmentation*100)
}
