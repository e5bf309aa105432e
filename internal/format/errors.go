package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadSize indicates a decoded block size is zero, unaligned, or too small.
	ErrBadSize = errors.New("format: bad block size")
)
