package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/pages"
)

// ============================================================================
// Allocator Creation Utilities
// ============================================================================

// newTestAllocator creates an allocator over a slice-backed region of maxPages
// pages using DefaultConfig.
func newTestAllocator(t testing.TB, maxPages int) *Allocator {
	t.Helper()
	return newTestAllocatorWithConfig(t, maxPages, DefaultConfig)
}

func newTestAllocatorWithConfig(t testing.TB, maxPages int, cfg Config) *Allocator {
	t.Helper()

	region, err := pages.NewBuffer(maxPages)
	require.NoError(t, err, "failed to create page buffer")
	t.Cleanup(func() { _ = region.Close() })

	a, err := New(region, &cfg)
	require.NoError(t, err, "failed to create allocator")
	return a
}

// mustMalloc allocates n bytes and fails the test on error.
func mustMalloc(t testing.TB, a *Allocator, n int) Ptr {
	t.Helper()
	p, buf, err := a.Malloc(n)
	require.NoError(t, err, "Malloc(%d)", n)
	require.NotEqual(t, Nil, p, "Malloc(%d) returned Nil", n)
	require.Len(t, buf, n)
	return p
}

// ============================================================================
// Invariant Checking
// ============================================================================

// assertInvariants fails the test if the heap or its lists are inconsistent.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Check(), "heap invariants violated")
}

// ============================================================================
// List Inspection
// ============================================================================

// freeBlockCount counts free-list blocks of the given size, or all of them
// when size is 0.
func freeBlockCount(a *Allocator, size int) int {
	n := 0
	for i := range a.NumFreeLists() {
		for _, b := range a.FreeList(i) {
			if size == 0 || b.Size == size {
				n++
			}
		}
	}
	return n
}

// quickBlockCount counts quick-listed blocks of the given size, or all of them
// when size is 0.
func quickBlockCount(a *Allocator, size int) int {
	n := 0
	for i := range a.NumQuickLists() {
		for _, b := range a.QuickList(i) {
			if size == 0 || b.Size == size {
				n++
			}
		}
	}
	return n
}

// blockOf returns the decoded block holding payload p.
func blockOf(a *Allocator, p Ptr) BlockInfo {
	return a.info(int(p) - 8)
}
