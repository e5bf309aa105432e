// Package format describes the in-heap block layout used by the allocator.
// It owns the constants, the header word codec, and the little-endian word
// helpers, so the allocator, the verifier, and the printer agree on one layout
// without importing each other.
package format

const (
	// PageSize is the number of bytes the heap grows by on each Pager call.
	PageSize = 4096

	// WordSize is the width of a header, footer, or link word.
	WordSize = 8

	// HeaderSize is the size of the header word preceding every block payload.
	HeaderSize = WordSize

	// FooterSize is the size of the boundary tag at the end of a free block.
	FooterSize = WordSize

	// Alignment is the payload alignment and the block size granularity.
	Alignment = 16

	// AlignmentMask is Alignment-1, used for round-up arithmetic.
	AlignmentMask = Alignment - 1

	// MinBlockSize is the smallest legal block: header, two links, footer.
	MinBlockSize = 32

	// PadSize is the unused word at the start of the heap. It stands in for the
	// first block's prev-footer slot and puts the first payload on a 16-byte
	// boundary.
	PadSize = WordSize

	// EpilogueSize is the size-0 allocated header at the very end of the heap.
	EpilogueSize = WordSize

	// HeapOverhead is the fixed cost of the pad plus the epilogue.
	HeapOverhead = PadSize + EpilogueSize

	// FirstBlockOffset is the heap offset of the first block header.
	FirstBlockOffset = PadSize
)

// Header flag bits. Block sizes are multiples of 16, so the low nibble is free.
const (
	// InQuickList marks a block parked in a quick list. It keeps ThisAllocated set.
	InQuickList uint64 = 0x1

	// PrevAllocated mirrors ThisAllocated of the physically preceding block.
	PrevAllocated uint64 = 0x2

	// ThisAllocated marks a block that is not available in a free list.
	ThisAllocated uint64 = 0x4

	// FlagMask covers every flag bit.
	FlagMask uint64 = 0xF

	// SizeMask extracts the block size from a decoded header.
	SizeMask = ^FlagMask
)

// Link offsets within a free block's payload area, relative to the header.
const (
	// NextLinkOffset holds the next pointer for free lists and quick lists.
	NextLinkOffset = HeaderSize

	// PrevLinkOffset holds the prev pointer for free lists only.
	PrevLinkOffset = HeaderSize + WordSize
)
