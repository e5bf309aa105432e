package alloc

import "github.com/joshuapare/heapkit/internal/format"

// coalesce merges two physically adjacent blocks when both are free. Both must
// already be in the free lists. Returns the merged block, which starts at prev.
func (a *Allocator) coalesce(prev, curr int) (int, bool) {
	if curr >= a.epilogue() || a.isAllocated(prev) || a.isAllocated(curr) {
		return 0, false
	}

	a.freeRemove(prev)
	a.freeRemove(curr)

	size := a.blockSize(prev) + a.blockSize(curr)
	a.setHeader(prev, size, a.flags(prev)&format.PrevAllocated)
	a.writeFooter(prev)
	if next := prev + size; next <= a.epilogue() {
		a.setPrevAllocated(next, false)
	}

	a.freeInsert(prev)
	a.stats.CoalesceCount++
	return prev, true
}

// release turns an allocated (or quick-listed) block into a free one, links it
// into the free lists, and merges it with free neighbours on both sides.
func (a *Allocator) release(blk int) int {
	size := a.blockSize(blk)
	prevAlloc := a.flags(blk) & format.PrevAllocated

	a.setHeader(blk, size, prevAlloc)
	a.writeFooter(blk)
	a.setPrevAllocated(blk+size, false)
	a.freeInsert(blk)

	if merged, ok := a.coalesce(blk, blk+size); ok {
		blk = merged
	}
	if prevAlloc == 0 {
		if merged, ok := a.coalesce(a.prevBlock(blk), blk); ok {
			blk = merged
		}
	}
	return blk
}
