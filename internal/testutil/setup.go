package testutil

import (
	"os"
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/pages"
)

// SetupHeap creates an allocator over an in-memory region of at most maxPages
// pages. A nil cfg selects the default configuration. The region is closed
// when the test finishes.
//
// Example:
//
//	a := testutil.SetupHeap(t, nil, 16)
//	p, buf, err := a.Malloc(100)
func SetupHeap(t testing.TB, cfg *alloc.Config, maxPages int) *alloc.Allocator {
	t.Helper()

	region, err := pages.NewBuffer(maxPages)
	if err != nil {
		t.Fatalf("Failed to create region: %v", err)
	}
	t.Cleanup(func() { _ = region.Close() })

	a, err := alloc.New(region, cfg)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	return a
}

// OpenTrace opens a trace file from the shared test data. The file is closed
// when the test finishes. Calls t.Skip if the trace is not found.
func OpenTrace(t testing.TB, relativePath string) *os.File {
	t.Helper()

	f, err := os.Open(ResolvePath(t, relativePath))
	if err != nil {
		t.Fatalf("Failed to open trace: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// ResolvePath finds a repository-relative test file by trying the path from
// the repository root and from packages nested below it.
func ResolvePath(t testing.TB, relativePath string) string {
	t.Helper()

	candidates := []string{
		relativePath,
		"../" + relativePath,
		"../../" + relativePath,
		"../../../" + relativePath,
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("Test file not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}
