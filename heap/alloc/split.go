package alloc

import "github.com/joshuapare/heapkit/internal/format"

// split marks the first need bytes of blk allocated. When the remainder is at
// least a minimum block it becomes a free block in the free lists and its
// offset is returned; a smaller remainder stays inside the allocation.
//
// blk must not be on any list. Its PrevAllocated bit is preserved.
func (a *Allocator) split(blk, need int) (int, bool) {
	size := a.blockSize(blk)
	prevAlloc := a.flags(blk) & format.PrevAllocated
	rem := size - need

	if rem < format.MinBlockSize {
		// Use entire block (absorb splinter)
		a.setHeader(blk, size, format.ThisAllocated|prevAlloc)
		a.setPrevAllocated(blk+size, true)
		return 0, false
	}

	a.stats.SplitCount++
	a.setHeader(blk, need, format.ThisAllocated|prevAlloc)

	tail := blk + need
	a.setHeader(tail, rem, format.PrevAllocated)
	a.writeFooter(tail)
	a.setPrevAllocated(tail+rem, false)
	a.freeInsert(tail)
	return tail, true
}
