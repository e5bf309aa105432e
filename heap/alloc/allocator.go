package alloc

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Runtime debug flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Allocator owns one heap: its bounds, the free list sentinels, and the quick
// list heads. The heap is created lazily by the first Malloc.
type Allocator struct {
	pager Pager
	cfg   Config
	magic uint64

	// Committed heap, refreshed after every grow. The backing array never
	// moves, so slices handed to callers stay valid.
	data []byte

	sizeTable *sizeClassTable
	freeHeads []listHead
	quick     []quickList

	initialized bool

	// Error left by the most recent failed call
	err error

	stats Stats

	// Test hook: called after every successful page grow (nil in production)
	onGrow func(pages int)
}

// New creates an allocator that grows its heap through p.
//
// Parameters:
//   - p: Page source; must not have committed any pages yet
//   - config: Size class and header configuration (use nil for DefaultConfig)
func New(p Pager, config *Config) (*Allocator, error) {
	if config == nil {
		config = &DefaultConfig
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if len(p.Bytes()) != 0 {
		return nil, ErrPagerNotEmpty
	}

	a := &Allocator{
		pager:     p,
		cfg:       *config,
		magic:     config.Magic,
		sizeTable: newSizeClassTable(*config),
		quick:     make([]quickList, config.NumQuickLists),
	}
	return a, nil
}

// Malloc allocates a block with at least n usable payload bytes.
//
// The returned slice has length n and a capacity covering the whole usable
// payload. n == 0 returns Nil with no error. On failure the error wraps
// ErrNoMem and is also retained for Err.
func (a *Allocator) Malloc(n int) (Ptr, []byte, error) {
	a.stats.AllocCalls++

	if n == 0 {
		return Nil, nil, nil
	}
	need, ok := format.PaddedSize(n)
	if !ok {
		return Nil, nil, a.fail(fmt.Errorf("%w: request of %d bytes", ErrNoMem, n))
	}

	if err := a.ensureInit(); err != nil {
		return Nil, nil, a.fail(fmt.Errorf("%w: initialize heap: %w", ErrNoMem, err))
	}

	if blk, found := a.quickSearch(need); found {
		a.stats.QuickHits++
		a.stats.AllocFastPath++
		return a.handOut(blk, n)
	}

	blk, found := a.freeSearch(need)
	grew := false
	for !found {
		if err := a.grow(); err != nil {
			if logAlloc {
				logger.Debug("malloc failed", "request", n, "need", need, "heap", len(a.data), "err", err)
			}
			return Nil, nil, a.fail(fmt.Errorf("%w: request of %d bytes: %w", ErrNoMem, n, err))
		}
		grew = true
		blk, found = a.freeSearch(need)
	}

	// Track fast vs slow path
	if grew {
		a.stats.AllocSlowPath++
	} else {
		a.stats.AllocFastPath++
	}

	a.freeRemove(blk)
	a.split(blk, need)
	return a.handOut(blk, n)
}

// Free returns the block at p to the allocator.
//
// p must be a live pointer from Malloc or Realloc. Anything else (nil,
// misaligned, outside the heap, corrupt header, double free) is a bug in the
// caller: Free logs it and panics with a *Fault rather than keep running on a
// damaged heap.
func (a *Allocator) Free(p Ptr) {
	a.stats.FreeCalls++

	blk, fault := a.validate("free", p)
	if fault != nil {
		logger.Error("heap corruption", "op", fault.Op, "ptr", uint64(fault.Ptr), "reason", fault.Reason)
		panic(fault)
	}
	a.free(blk)
}

// Realloc resizes the block at p to hold n payload bytes.
//
// A pointer that fails validation returns an error wrapping ErrInvalid and
// the *Fault, without panicking. n == 0 frees p and returns Nil. Shrinking
// splits in place and returns p; growing allocates, copies, and frees p.
// If growing fails, p is left untouched and the error wraps ErrNoMem.
func (a *Allocator) Realloc(p Ptr, n int) (Ptr, []byte, error) {
	a.stats.ReallocCalls++

	blk, fault := a.validate("realloc", p)
	if fault != nil {
		return Nil, nil, a.fail(fmt.Errorf("%w: %w", ErrInvalid, fault))
	}

	if n == 0 {
		a.stats.FreeCalls++
		a.free(blk)
		return Nil, nil, nil
	}

	need, ok := format.PaddedSize(n)
	if !ok {
		return Nil, nil, a.fail(fmt.Errorf("%w: request of %d bytes", ErrNoMem, n))
	}

	size := a.blockSize(blk)
	switch {
	case need > size:
		np, buf, err := a.Malloc(n)
		if err != nil {
			return Nil, nil, err
		}
		copy(buf, a.data[int(p):blk+size])
		a.free(blk)
		return np, buf, nil

	case need < size:
		if tail, split := a.split(blk, need); split {
			a.stats.BytesFreed += int64(size - need)
			a.stats.LiveBytes -= int64(size - need)
			a.coalesce(tail, a.nextBlock(tail))
		}
	}

	end := blk + a.blockSize(blk)
	return p, a.data[int(p) : int(p)+n : end], nil
}

// Bytes returns the whole usable payload of a live pointer, or nil if p does
// not validate.
func (a *Allocator) Bytes(p Ptr) []byte {
	blk, fault := a.validate("bytes", p)
	if fault != nil {
		return nil
	}
	end := blk + a.blockSize(blk)
	return a.data[int(p):end:end]
}

// Err returns the error recorded by the most recent failed Malloc or Realloc.
// Successful calls leave it in place; use ResetErr to clear it.
func (a *Allocator) Err() error { return a.err }

// ResetErr clears the recorded error.
func (a *Allocator) ResetErr() { a.err = nil }

// HeapSize returns the committed heap size in bytes.
func (a *Allocator) HeapSize() int { return len(a.data) }

// Config returns the configuration the allocator was built with.
func (a *Allocator) Config() Config { return a.cfg }

// ============================================================================
// Internal helpers
// ============================================================================

func (a *Allocator) fail(err error) error {
	a.err = err
	return err
}

// handOut finishes an allocation and builds the caller's slice.
func (a *Allocator) handOut(blk, n int) (Ptr, []byte, error) {
	size := a.blockSize(blk)
	a.stats.BytesAllocated += int64(size)
	a.stats.LiveBytes += int64(size)
	if a.stats.LiveBytes > a.stats.PeakLiveBytes {
		a.stats.PeakLiveBytes = a.stats.LiveBytes
	}

	p := blk + format.HeaderSize
	return Ptr(p), a.data[p : p+n : blk+size], nil
}

// free routes a validated block to its quick list or back to the free lists.
func (a *Allocator) free(blk int) {
	size := a.blockSize(blk)
	a.stats.BytesFreed += int64(size)
	a.stats.LiveBytes -= int64(size)

	if qi, ok := a.sizeTable.quickClass(size); ok {
		a.quickInsert(blk, qi)
		return
	}
	a.release(blk)
}

// ensureInit seeds the list heads and commits the first page.
func (a *Allocator) ensureInit() error {
	if a.initialized {
		return nil
	}
	a.initFreeLists()
	for i := range a.quick {
		a.quick[i] = quickList{first: nilLink}
	}
	if err := a.grow(); err != nil {
		return err
	}
	a.initialized = true
	return nil
}

// grow adds one page at the end of the heap as a free block and merges it
// with the previous tail block when that block is free.
func (a *Allocator) grow() error {
	oldEnd := len(a.data)
	if _, err := a.pager.Grow(); err != nil {
		return err
	}
	a.data = a.pager.Bytes()
	if len(a.data) != oldEnd+format.PageSize {
		return fmt.Errorf("pager grew heap from %d to %d bytes, want one page", oldEnd, len(a.data))
	}

	a.stats.GrowCalls++
	a.stats.GrowBytes += format.PageSize

	var blk, size int
	var prevAlloc uint64
	if oldEnd == 0 {
		// First page: pad, one free block, epilogue
		blk = format.FirstBlockOffset
		size = format.PageSize - format.HeapOverhead
		prevAlloc = format.PrevAllocated
	} else {
		// The old epilogue becomes the new block's header
		blk = oldEnd - format.EpilogueSize
		size = format.PageSize
		prevAlloc = a.flags(blk) & format.PrevAllocated
	}

	a.setHeader(blk, size, prevAlloc)
	a.writeFooter(blk)
	a.writeEpilogue(false)
	a.freeInsert(blk)

	if prevAlloc == 0 {
		a.coalesce(a.prevBlock(blk), blk)
	}

	if logAlloc {
		logger.Debug("heap grow", "pages", len(a.data)/format.PageSize, "bytes", len(a.data))
	}
	if a.onGrow != nil {
		a.onGrow(len(a.data) / format.PageSize)
	}
	return nil
}

// validate checks that p names a live allocated block and returns its header
// offset.
func (a *Allocator) validate(op string, p Ptr) (int, *Fault) {
	fault := func(reason string) (int, *Fault) {
		return 0, &Fault{Op: op, Ptr: p, Reason: reason}
	}

	if p == Nil {
		return fault("null pointer")
	}
	if uint64(p)%format.Alignment != 0 {
		return fault("pointer is not 16-byte aligned")
	}
	if uint64(p) >= uint64(len(a.data)) {
		return fault("pointer outside the heap")
	}

	blk := int(p) - format.HeaderSize
	if blk < format.FirstBlockOffset || blk >= a.epilogue() {
		return fault("pointer outside the heap")
	}

	h := a.header(blk)
	size := int(h & format.SizeMask)
	if size < format.MinBlockSize || size%format.Alignment != 0 {
		return fault(fmt.Sprintf("corrupt block size %d", size))
	}
	if size > a.epilogue()-blk {
		return fault(fmt.Sprintf("block size %d runs past the end of the heap", size))
	}
	if h&format.ThisAllocated == 0 {
		return fault("block is not allocated (double free?)")
	}
	if h&format.InQuickList != 0 {
		return fault("block is already in a quick list (double free?)")
	}
	if h&format.PrevAllocated == 0 {
		if blk == format.FirstBlockOffset {
			return fault("first block claims a free predecessor")
		}
		prev := a.prevBlock(blk)
		if prev < format.FirstBlockOffset || prev >= blk {
			return fault("previous block footer is corrupt")
		}
		if a.isAllocated(prev) {
			return fault("prev-allocated bit is clear but the previous block is allocated")
		}
	}
	return blk, nil
}
