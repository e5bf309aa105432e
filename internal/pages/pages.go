// Package pages provides the page source the allocator grows its heap from.
//
// A Region reserves address space for a fixed maximum number of pages up front
// and commits one page per Grow call, so the backing memory never moves and
// payload slices handed out by the allocator stay valid as the heap grows.
package pages

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// DefaultMaxPages caps a Region when the caller passes zero (1 MiB).
const DefaultMaxPages = 256

var (
	// ErrExhausted indicates the region has no pages left to commit.
	ErrExhausted = errors.New("pages: region exhausted")

	// ErrClosed indicates the region was already released.
	ErrClosed = errors.New("pages: region closed")
)

// Region is a contiguous, forward-growing run of pages.
type Region struct {
	mem     []byte // whole reservation
	used    int    // committed bytes, always a multiple of format.PageSize
	commit  func(b []byte) error
	release func() error
	closed  bool
}

// New reserves maxPages pages using the platform's virtual memory API where one
// is available, falling back to a Go slice elsewhere.
func New(maxPages int) (*Region, error) {
	size, err := reservationSize(maxPages)
	if err != nil {
		return nil, err
	}
	mem, commit, release, err := reserve(size)
	if err != nil {
		return nil, fmt.Errorf("pages: reserve %d bytes: %w", size, err)
	}
	return &Region{mem: mem, commit: commit, release: release}, nil
}

// NewBuffer returns a Region backed by an ordinary Go slice. It behaves like New
// on every platform and is what tests use when they need determinism.
func NewBuffer(maxPages int) (*Region, error) {
	size, err := reservationSize(maxPages)
	if err != nil {
		return nil, err
	}
	return &Region{
		mem:     make([]byte, size),
		commit:  func([]byte) error { return nil },
		release: func() error { return nil },
	}, nil
}

func reservationSize(maxPages int) (int, error) {
	if maxPages < 0 {
		return 0, fmt.Errorf("pages: negative page count %d", maxPages)
	}
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}
	if maxPages > int(^uint(0)>>1)/format.PageSize {
		return 0, fmt.Errorf("pages: page count %d overflows", maxPages)
	}
	return maxPages * format.PageSize, nil
}

// Grow commits one more page and returns it. The page immediately follows the
// previously committed one.
func (r *Region) Grow() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.used+format.PageSize > len(r.mem) {
		return nil, ErrExhausted
	}
	page := r.mem[r.used : r.used+format.PageSize : r.used+format.PageSize]
	if err := r.commit(page); err != nil {
		return nil, fmt.Errorf("pages: commit page %d: %w", r.used/format.PageSize, err)
	}
	r.used += format.PageSize
	return page, nil
}

// Bytes returns the committed part of the region, [start, end).
func (r *Region) Bytes() []byte {
	if r.closed {
		return nil
	}
	return r.mem[:r.used:r.used]
}

// Pages returns the number of committed pages.
func (r *Region) Pages() int { return r.used / format.PageSize }

// MaxPages returns the reservation size in pages.
func (r *Region) MaxPages() int { return len(r.mem) / format.PageSize }

// Close releases the reservation. Slices obtained from the region must not be
// used afterwards.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.release()
	r.mem = nil
	r.used = 0
	return err
}
