package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Header accessors. Every read decodes with the magic, every write encodes.

func (a *Allocator) header(blk int) uint64 {
	return format.Decode(format.ReadU64(a.data, blk), a.magic)
}

func (a *Allocator) setHeader(blk, size int, flags uint64) {
	format.PutU64(a.data, blk, format.Encode(format.Pack(size, flags), a.magic))
}

func (a *Allocator) blockSize(blk int) int {
	return int(a.header(blk) & format.SizeMask)
}

func (a *Allocator) flags(blk int) uint64 {
	return a.header(blk) & format.FlagMask
}

func (a *Allocator) isAllocated(blk int) bool {
	return a.header(blk)&format.ThisAllocated != 0
}

// writeFooter copies the stored header word into the block's last word.
func (a *Allocator) writeFooter(blk int) {
	size := a.blockSize(blk)
	format.PutU64(a.data, blk+size-format.FooterSize, format.ReadU64(a.data, blk))
}

// prevBlock locates the physically preceding block through its footer. Only
// meaningful when blk's PrevAllocated bit is clear.
func (a *Allocator) prevBlock(blk int) int {
	footer := format.Decode(format.ReadU64(a.data, blk-format.FooterSize), a.magic)
	return blk - int(footer&format.SizeMask)
}

func (a *Allocator) nextBlock(blk int) int {
	return blk + a.blockSize(blk)
}

// setPrevAllocated updates blk's PrevAllocated bit, keeping a free block's
// footer in sync with its header.
func (a *Allocator) setPrevAllocated(blk int, on bool) {
	h := a.header(blk)
	if on {
		h |= format.PrevAllocated
	} else {
		h &^= format.PrevAllocated
	}
	format.PutU64(a.data, blk, format.Encode(h, a.magic))
	if h&format.ThisAllocated == 0 && h&format.SizeMask != 0 {
		a.writeFooter(blk)
	}
}

// epilogue returns the offset of the trailing size-0 header.
func (a *Allocator) epilogue() int {
	return len(a.data) - format.EpilogueSize
}

func (a *Allocator) writeEpilogue(prevAllocated bool) {
	flags := format.ThisAllocated
	if prevAllocated {
		flags |= format.PrevAllocated
	}
	a.setHeader(a.epilogue(), 0, flags)
}

func (a *Allocator) info(blk int) BlockInfo {
	h := a.header(blk)
	return BlockInfo{
		Offset:        blk,
		Size:          int(h & format.SizeMask),
		Allocated:     h&format.ThisAllocated != 0,
		PrevAllocated: h&format.PrevAllocated != 0,
		InQuickList:   h&format.InQuickList != 0,
	}
}
