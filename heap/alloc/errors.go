package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMem indicates the request could not be satisfied: the padded size
	// overflowed or the pager refused to grow the heap.
	ErrNoMem = errors.New("alloc: out of memory")

	// ErrInvalid indicates Realloc was handed a pointer that failed validation.
	ErrInvalid = errors.New("alloc: invalid pointer")

	// ErrBadConfig indicates a Config that cannot describe a usable allocator.
	ErrBadConfig = errors.New("alloc: bad config")

	// ErrPagerNotEmpty indicates New was given a pager that already holds pages.
	ErrPagerNotEmpty = errors.New("alloc: pager already has pages")
)

// Fault describes heap corruption or misuse detected while validating a
// pointer. Free panics with a *Fault; Realloc wraps it in ErrInvalid.
type Fault struct {
	Op     string // "free" or "realloc"
	Ptr    Ptr
	Reason string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("alloc: %s(0x%X): %s", f.Op, uint64(f.Ptr), f.Reason)
}
