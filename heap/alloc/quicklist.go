package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// nilLink terminates a quick list. No block header lives at offset 0.
const nilLink = 0

// quickList is a LIFO stack of blocks of one exact size, linked through the
// first payload word.
type quickList struct {
	first  int
	length int
}

// quickInsert parks an allocated block in quick list qi, flushing the list
// first when it is full.
func (a *Allocator) quickInsert(blk, qi int) {
	q := &a.quick[qi]
	if q.length >= a.cfg.QuickListMax {
		a.quickFlush(qi)
	}

	a.setHeader(blk, a.blockSize(blk), a.flags(blk)|format.InQuickList)
	format.PutLink(a.data, blk+format.NextLinkOffset, q.first)
	q.first = blk
	q.length++
}

// quickFlush empties quick list qi into the free lists. Each block is released
// and coalesced with its immediate neighbours only.
func (a *Allocator) quickFlush(qi int) {
	q := &a.quick[qi]
	a.stats.QuickFlushes++
	if logAlloc {
		logger.Debug("quick list flush", "list", qi, "size", a.sizeTable.quickSize(qi), "blocks", q.length)
	}

	for q.first != nilLink {
		blk := q.first
		q.first = format.ReadLink(a.data, blk+format.NextLinkOffset)
		q.length--
		a.release(blk)
	}
}

// quickSearch pops a block of exactly need bytes, if one is parked.
func (a *Allocator) quickSearch(need int) (int, bool) {
	qi, ok := a.sizeTable.quickClass(need)
	if !ok {
		return 0, false
	}
	q := &a.quick[qi]
	if q.first == nilLink {
		return 0, false
	}

	blk := q.first
	q.first = format.ReadLink(a.data, blk+format.NextLinkOffset)
	q.length--
	a.setHeader(blk, a.blockSize(blk), a.flags(blk)&^format.InQuickList)
	return blk, true
}
