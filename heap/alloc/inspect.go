package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/format"
)

// NumFreeLists returns the number of segregated free lists.
func (a *Allocator) NumFreeLists() int { return a.sizeTable.NumClasses() }

// NumQuickLists returns the number of quick lists.
func (a *Allocator) NumQuickLists() int { return len(a.quick) }

// Magic returns the header obfuscation pattern.
func (a *Allocator) Magic() uint64 { return a.magic }

// Raw returns the committed heap bytes. The slice aliases the heap.
func (a *Allocator) Raw() []byte { return a.data }

// SizeClass returns the free list index a block of size bytes belongs to.
func (a *Allocator) SizeClass(size int) int { return a.sizeTable.getSizeClass(size) }

// QuickListSize returns the exact block size held by quick list i.
func (a *Allocator) QuickListSize(i int) int { return a.sizeTable.quickSize(i) }

// Blocks returns every block in address order, from the first block up to
// (not including) the epilogue. Nil before the heap exists.
func (a *Allocator) Blocks() []BlockInfo {
	if len(a.data) == 0 {
		return nil
	}
	var out []BlockInfo
	for blk := format.FirstBlockOffset; blk < a.epilogue(); {
		b := a.info(blk)
		if b.Size == 0 {
			break
		}
		out = append(out, b)
		blk += b.Size
	}
	return out
}

// FreeList returns the blocks on free list i, head first.
func (a *Allocator) FreeList(i int) []BlockInfo {
	if i < 0 || i >= len(a.freeHeads) {
		return nil
	}
	limit := len(a.data) / format.MinBlockSize
	s := sentinel(i)
	var out []BlockInfo
	for blk := a.linkNext(s); blk != s && len(out) <= limit; blk = a.linkNext(blk) {
		if blk < 0 || blk >= a.epilogue() {
			break
		}
		out = append(out, a.info(blk))
	}
	return out
}

// QuickList returns the blocks parked on quick list i, most recently freed first.
func (a *Allocator) QuickList(i int) []BlockInfo {
	if i < 0 || i >= len(a.quick) {
		return nil
	}
	limit := len(a.data) / format.MinBlockSize
	var out []BlockInfo
	for blk := a.quick[i].first; blk != nilLink && len(out) <= limit; {
		if blk < format.FirstBlockOffset || blk >= a.epilogue() {
			break
		}
		out = append(out, a.info(blk))
		blk = format.ReadLink(a.data, blk+format.NextLinkOffset)
	}
	return out
}

// QuickListLen returns the recorded length of quick list i.
func (a *Allocator) QuickListLen(i int) int {
	if i < 0 || i >= len(a.quick) {
		return 0
	}
	return a.quick[i].length
}

// Check validates the whole heap: the physical block invariants plus the
// free list and quick list bookkeeping. It returns the first violation as a
// *verify.ValidationError, or nil.
func (a *Allocator) Check() error {
	if len(a.data) == 0 {
		return nil
	}
	if err := verify.AllInvariants(a.data, a.magic); err != nil {
		return err
	}
	if err := a.checkFreeLists(); err != nil {
		return err
	}
	return a.checkQuickLists()
}

func (a *Allocator) checkFreeLists() error {
	free := make(map[int]bool)
	for _, b := range a.Blocks() {
		if !b.Allocated {
			free[b.Offset] = true
		}
	}

	seen := make(map[int]bool)
	for sc := range a.freeHeads {
		s := sentinel(sc)
		prev := s
		for blk := a.linkNext(s); blk != s; blk = a.linkNext(blk) {
			if !free[blk] {
				return listError("FreeList", blk, "list %d links a block that is not a free block", sc)
			}
			if seen[blk] {
				return listError("FreeList", blk, "block appears twice in the free lists")
			}
			seen[blk] = true
			if a.linkPrev(blk) != prev {
				return listError("FreeList", blk, "prev link %d, want %d", a.linkPrev(blk), prev)
			}
			if got := a.sizeTable.getSizeClass(a.blockSize(blk)); got != sc {
				return listError("FreeList", blk, "size %d belongs in list %d, found in list %d", a.blockSize(blk), got, sc)
			}
			prev = blk
		}
		if a.linkPrev(s) != prev {
			return listError("FreeList", -1, "list %d sentinel prev link is stale", sc)
		}
	}

	if len(seen) != len(free) {
		for off := range free {
			if !seen[off] {
				return listError("FreeList", off, "free block is on no free list")
			}
		}
	}
	return nil
}

func (a *Allocator) checkQuickLists() error {
	limit := len(a.data) / format.MinBlockSize
	for qi := range a.quick {
		q := a.quick[qi]
		want := a.sizeTable.quickSize(qi)
		n := 0
		for blk := q.first; blk != nilLink; blk = format.ReadLink(a.data, blk+format.NextLinkOffset) {
			if blk < format.FirstBlockOffset || blk >= a.epilogue() || blk%format.Alignment != format.FirstBlockOffset {
				return listError("QuickList", blk, "quick list %d links outside the heap", qi)
			}
			n++
			if n > limit {
				return listError("QuickList", -1, "quick list %d does not terminate", qi)
			}
			b := a.info(blk)
			if !b.Allocated || !b.InQuickList {
				return listError("QuickList", blk, "quick-listed block must be allocated and flagged")
			}
			if b.Size != want {
				return listError("QuickList", blk, "size %d on quick list %d, want %d", b.Size, qi, want)
			}
		}
		if n != q.length {
			return listError("QuickList", -1, "quick list %d holds %d blocks, recorded length %d", qi, n, q.length)
		}
		if n > a.cfg.QuickListMax {
			return listError("QuickList", -1, "quick list %d holds %d blocks, capacity %d", qi, n, a.cfg.QuickListMax)
		}
	}

	// Every flagged block must be reachable from its quick list
	for _, b := range a.Blocks() {
		if !b.InQuickList {
			continue
		}
		qi, ok := a.sizeTable.quickClass(b.Size)
		if !ok || !a.onQuickList(qi, b.Offset) {
			return listError("QuickList", b.Offset, "block is flagged quick-listed but on no quick list")
		}
	}
	return nil
}

func (a *Allocator) onQuickList(qi, blk int) bool {
	for cur := a.quick[qi].first; cur != nilLink; cur = format.ReadLink(a.data, cur+format.NextLinkOffset) {
		if cur == blk {
			return true
		}
	}
	return false
}

func listError(kind string, off int, msg string, args ...any) error {
	return &verify.ValidationError{Type: kind, Message: fmt.Sprintf(msg, args...), Offset: off}
}
