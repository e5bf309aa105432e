package format

// Align16 returns n aligned up to the next 16-byte boundary.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// AlignPage returns n aligned up to the next 4KB boundary.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n int) int {
	return (n + PageSize - 1) &^ (PageSize - 1)
}

// PaddedSize converts a requested payload size into a block size: header
// included, rounded to 16, floored at MinBlockSize. ok is false when the
// arithmetic wraps or n is negative.
func PaddedSize(n int) (size int, ok bool) {
	if n < 0 {
		return 0, false
	}
	size = n + HeaderSize
	if size < n {
		return 0, false
	}
	size = Align16(size)
	if size < n {
		return 0, false
	}
	if size < MinBlockSize {
		size = MinBlockSize
	}
	return size, true
}
