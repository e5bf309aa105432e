// Package verify checks the physical layout of an allocator heap.
//
// It works on raw heap bytes and the header magic only, so it can be run
// against any snapshot of a heap without access to the allocator that built
// it. List-level invariants (size classes, quick list capacity) live with the
// allocator, see alloc.(*Allocator).Check.
//
// Checks:
//
//   - Layout: heap length is a whole number of pages, blocks tile [8, end-8)
//   - BoundaryTags: PrevAllocated matches the preceding block, free blocks carry a footer
//   - Epilogue: the final word is a size-0 allocated header
//   - Coalesced: no two free blocks are physically adjacent
package verify
