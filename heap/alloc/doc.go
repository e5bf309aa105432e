// Package alloc implements a segregated free-list allocator over a single
// heap region that grows one 4KB page at a time.
//
// # Overview
//
// The heap is a byte region supplied by a Pager (see internal/pages). Every
// allocation is a block with an 8-byte header; free blocks reuse their payload
// for list links and end with a footer copy of the header so the following
// block can find them when coalescing. All bookkeeping lives inside the heap
// bytes: list nodes are heap offsets, never separate Go objects.
//
// # Allocator API
//
//   - Malloc(n): Allocate n payload bytes, returning a Ptr and the payload slice
//   - Free(p): Return a block; heap corruption panics with *Fault
//   - Realloc(p, n): Resize in place when shrinking, move when growing
//   - Err(): The error left by the last failed call
//
// # Usage Example
//
//	region, err := pages.New(256)
//	if err != nil {
//	    return err
//	}
//	defer region.Close()
//
//	a, err := alloc.New(region, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, buf, err := a.Malloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(buf, "hello")
//	a.Free(p)
//
// # Block Layout
//
//	Offset  Size  Description
//	0x00    8     Header: size | ThisAllocated | PrevAllocated | InQuickList, XOR magic
//	0x08    8     Payload, or next link when free/quick-listed
//	0x10    8     Payload, or prev link when free
//	...
//	size-8  8     Payload, or footer (copy of header) when free
//
// Payloads are 16-byte aligned. The heap begins with an 8-byte pad and ends
// with a size-0 allocated epilogue header, so a fresh page offers one free
// block of 4096-16 = 4080 bytes.
//
// # Size Classes
//
// With the default configuration the allocator maintains 10 free lists:
//
//	List 0:     32 bytes
//	List 1:     33 -    64
//	List 2:     65 -   128
//	List 3:    129 -   256
//	...
//	List 8:   4097 -  8192
//	List 9:   8193+
//
// and 10 quick lists holding exact sizes 32, 48, ..., 176, at most 5 blocks
// each. Quick-listed blocks stay marked allocated, so they are neither found
// by free-list searches nor merged by the coalescer until their list
// overflows and is flushed.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize every call
// behind a single lock if the allocator is shared.
package alloc
