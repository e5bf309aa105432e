package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Free lists are circular and doubly linked through the first two payload
// words of each free block. Sentinels are not in the heap: list i's sentinel
// is addressed by the negative link value sentinel(i) and its own next/prev
// live in Allocator.freeHeads.

// listHead is a sentinel's link pair.
type listHead struct {
	next int
	prev int
}

func sentinel(sc int) int { return -(sc + 1) }

func sentinelIndex(node int) int { return -node - 1 }

func (a *Allocator) linkNext(node int) int {
	if node < 0 {
		return a.freeHeads[sentinelIndex(node)].next
	}
	return format.ReadLink(a.data, node+format.NextLinkOffset)
}

func (a *Allocator) linkPrev(node int) int {
	if node < 0 {
		return a.freeHeads[sentinelIndex(node)].prev
	}
	return format.ReadLink(a.data, node+format.PrevLinkOffset)
}

func (a *Allocator) setLinkNext(node, v int) {
	if node < 0 {
		a.freeHeads[sentinelIndex(node)].next = v
		return
	}
	format.PutLink(a.data, node+format.NextLinkOffset, v)
}

func (a *Allocator) setLinkPrev(node, v int) {
	if node < 0 {
		a.freeHeads[sentinelIndex(node)].prev = v
		return
	}
	format.PutLink(a.data, node+format.PrevLinkOffset, v)
}

// initFreeLists points every sentinel at itself.
func (a *Allocator) initFreeLists() {
	a.freeHeads = make([]listHead, a.sizeTable.NumClasses())
	for sc := range a.freeHeads {
		s := sentinel(sc)
		a.freeHeads[sc] = listHead{next: s, prev: s}
	}
}

// freeInsert pushes blk at the head of the list matching its size. O(1).
func (a *Allocator) freeInsert(blk int) {
	sc := a.sizeTable.getSizeClass(a.blockSize(blk))
	s := sentinel(sc)
	first := a.linkNext(s)

	a.setLinkNext(blk, first)
	a.setLinkPrev(blk, s)
	a.setLinkPrev(first, blk)
	a.setLinkNext(s, blk)
}

// freeRemove unlinks blk from whatever list holds it. O(1).
func (a *Allocator) freeRemove(blk int) {
	next, prev := a.linkNext(blk), a.linkPrev(blk)
	a.setLinkNext(prev, next)
	a.setLinkPrev(next, prev)
}

// freeSearch returns the first block of at least need bytes, scanning from
// need's own class upward and each list from its head.
func (a *Allocator) freeSearch(need int) (int, bool) {
	for sc := a.sizeTable.getSizeClass(need); sc < len(a.freeHeads); sc++ {
		s := sentinel(sc)
		for blk := a.linkNext(s); blk != s; blk = a.linkNext(blk) {
			if a.blockSize(blk) >= need {
				return blk, true
			}
		}
	}
	return 0, false
}
