package format

import "encoding/binary"

// Binary encoding utilities for little-endian heap words.
//
// Implementation: Uses encoding/binary.LittleEndian. The compiler inlines these
// calls well enough that an unsafe variant buys nothing.

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// PutLink stores a signed heap offset. Negative values address list sentinels.
func PutLink(b []byte, off int, v int) {
	binary.LittleEndian.PutUint64(b[off:off+8], uint64(int64(v)))
}

// ReadLink reads a signed heap offset written by PutLink.
func ReadLink(b []byte, off int) int {
	return int(int64(binary.LittleEndian.Uint64(b[off : off+8])))
}
