package format

import "fmt"

// Block is a decoded view of one block header.
//
// Header layout (little-endian, stored XOR magic):
//
//	Bits    Description
//	63..4   Block size in bytes, header through footer, multiple of 16.
//	2       ThisAllocated
//	1       PrevAllocated
//	0       InQuickList
type Block struct {
	Offset int    // Heap offset of the header word
	Size   int    // Total block size
	Flags  uint64 // Decoded flag bits
}

// Allocated reports whether ThisAllocated is set.
func (b Block) Allocated() bool { return b.Flags&ThisAllocated != 0 }

// PrevAllocated reports whether PrevAllocated is set.
func (b Block) PrevAllocated() bool { return b.Flags&PrevAllocated != 0 }

// Quick reports whether the block is parked in a quick list.
func (b Block) Quick() bool { return b.Flags&InQuickList != 0 }

// Payload returns the heap offset of the first payload byte.
func (b Block) Payload() int { return b.Offset + HeaderSize }

// Next returns the heap offset of the physically following header.
func (b Block) Next() int { return b.Offset + b.Size }

// FooterOffset returns where this block's boundary tag lives.
func (b Block) FooterOffset() int { return b.Offset + b.Size - FooterSize }

// Pack builds a decoded header word from a size and flag bits.
func Pack(size int, flags uint64) uint64 {
	return uint64(size)&SizeMask | flags&FlagMask
}

// Encode obfuscates a header word before it is stored.
func Encode(h, magic uint64) uint64 { return h ^ magic }

// Decode recovers a header word read from the heap.
func Decode(raw, magic uint64) uint64 { return raw ^ magic }

// ReadHeader decodes the header word at off.
func ReadHeader(b []byte, off int, magic uint64) (Block, error) {
	if off < 0 || off+HeaderSize > len(b) {
		return Block{}, fmt.Errorf("header at %d: %w", off, ErrTruncated)
	}
	h := Decode(ReadU64(b, off), magic)
	return Block{Offset: off, Size: int(h & SizeMask), Flags: h & FlagMask}, nil
}

// NextBlock decodes the block at off and returns it with the offset of the
// following header. The epilogue decodes as a size-0 allocated block and is
// returned with next == off; callers stop there.
func NextBlock(b []byte, off int, magic uint64) (Block, int, error) {
	blk, err := ReadHeader(b, off, magic)
	if err != nil {
		return Block{}, 0, err
	}
	if blk.Size == 0 {
		return blk, off, nil
	}
	if blk.Size < MinBlockSize || blk.Size%Alignment != 0 {
		return Block{}, 0, fmt.Errorf("block at %d size %d: %w", off, blk.Size, ErrBadSize)
	}
	if blk.Next() > len(b) {
		return Block{}, 0, fmt.Errorf("block at %d size %d: %w", off, blk.Size, ErrTruncated)
	}
	return blk, blk.Next(), nil
}
