package alloc

// Pager supplies the heap region. It is the only collaborator the allocator
// needs from the outside world.
//
// Implementations:
//   - pages.Region: mmap/VirtualAlloc reservation committed page by page
//   - pages.NewBuffer: slice-backed region for tests and portable builds
type Pager interface {
	// Grow extends the region by exactly one page and returns the new page.
	// The page must immediately follow the previously committed bytes and the
	// memory already handed out must not move.
	Grow() ([]byte, error)

	// Bytes returns the committed region, [heapStart, heapEnd).
	Bytes() []byte
}
