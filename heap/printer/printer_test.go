package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/testutil"
)

// newTestHeap builds a small heap with one allocated, one quick-listed and one
// free-listed block in front of the tail.
func newTestHeap(t *testing.T) (*alloc.Allocator, alloc.Ptr) {
	t.Helper()

	a := testutil.SetupHeap(t, &alloc.ConfigWeakMagic, 4)

	x, buf, err := a.Malloc(4)
	require.NoError(t, err)
	copy(buf, "ABCD")
	q, _, err := a.Malloc(8)
	require.NoError(t, err)
	f, _, err := a.Malloc(200)
	require.NoError(t, err)
	_, _, err = a.Malloc(1)
	require.NoError(t, err)

	a.Free(q)
	a.Free(f)
	return a, x
}

func TestPrinter_PrintHeap_Text(t *testing.T) {
	a, _ := newTestHeap(t)

	var buf bytes.Buffer
	p := New(a, &buf, DefaultOptions())
	require.NoError(t, p.PrintHeap())

	output := buf.String()
	t.Logf("Text output:\n%s", output)

	require.Contains(t, output, "HEAP 0x1000 bytes (1 pages)")
	require.Contains(t, output, "BLOCKS")
	require.Contains(t, output, "[0x00000008]     32  allocated prev-alloc")
	require.Contains(t, output, "quick")
	require.Contains(t, output, "FREE LISTS")
	require.Contains(t, output, "[3] 129-256: 0x48(208)")
	require.Contains(t, output, "QUICK LISTS")
	require.Contains(t, output, "[0] size 32 (1/5): 0x28")
	require.Contains(t, output, "SUMMARY")
	require.Contains(t, output, "free:      3,984 bytes in 2 blocks (largest 3,776)")
}

func TestPrinter_PrintHeap_TextSections(t *testing.T) {
	a, _ := newTestHeap(t)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ShowBlocks = false
	opts.ShowQuickLists = false
	opts.PrintSummary = false
	p := New(a, &buf, opts)
	require.NoError(t, p.PrintHeap())

	output := buf.String()
	require.NotContains(t, output, "BLOCKS")
	require.NotContains(t, output, "QUICK LISTS")
	require.NotContains(t, output, "SUMMARY")
	require.Contains(t, output, "FREE LISTS")
}

func TestPrinter_PrintHeap_Uninitialized(t *testing.T) {
	a := testutil.SetupHeap(t, nil, 1)

	var buf bytes.Buffer
	require.NoError(t, New(a, &buf, DefaultOptions()).PrintHeap())
	require.Contains(t, buf.String(), "<uninitialized>")
}

func TestPrinter_PrintHeap_JSON(t *testing.T) {
	a, _ := newTestHeap(t)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	p := New(a, &buf, opts)
	require.NoError(t, p.PrintHeap())

	var result jsonHeap
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))

	require.Equal(t, 4096, result.Size)
	require.Equal(t, 1, result.Pages)
	require.Equal(t, "WeakMagic", result.Config)
	require.Len(t, result.Blocks, 5)
	require.Equal(t, "allocated", result.Blocks[0].State)
	require.Equal(t, "quick", result.Blocks[1].State)
	require.Equal(t, "free", result.Blocks[2].State)

	require.Len(t, result.QuickLists, 1)
	require.Equal(t, 32, result.QuickLists[0].Size)
	require.Equal(t, []int{0x28}, result.QuickLists[0].Offsets)

	require.NotNil(t, result.Summary)
	require.Equal(t, 2, result.Summary.FreeCount)
}

func TestPrinter_PrintBlock_Payload(t *testing.T) {
	a, x := newTestHeap(t)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ShowPayload = true
	opts.MaxPayloadBytes = 4
	p := New(a, &buf, opts)
	require.NoError(t, p.PrintBlock(x))

	output := strings.TrimSpace(buf.String())
	require.True(t, strings.HasSuffix(output, "41424344..."), "got %q", output)
}

func TestPrinter_PrintBlock_JSON(t *testing.T) {
	a, x := newTestHeap(t)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	opts.ShowPayload = true
	opts.MaxPayloadBytes = 0
	p := New(a, &buf, opts)
	require.NoError(t, p.PrintBlock(x))

	var b jsonBlock
	require.NoError(t, json.Unmarshal(buf.Bytes(), &b))
	require.Equal(t, 8, b.Offset)
	require.Equal(t, 32, b.Size)
	require.Len(t, b.Payload, 48) // 24 usable bytes, hex encoded
	require.False(t, b.Truncated)
}

func TestPrinter_PrintBlock_Unknown(t *testing.T) {
	a, x := newTestHeap(t)
	p := New(a, &bytes.Buffer{}, DefaultOptions())
	require.Error(t, p.PrintBlock(x+16))
}

func TestFreeListRange(t *testing.T) {
	require.Equal(t, "32", freeListRange(0, 10))
	require.Equal(t, "33-64", freeListRange(1, 10))
	require.Equal(t, "129-256", freeListRange(3, 10))
	require.Equal(t, "8193+", freeListRange(9, 10))
	require.Equal(t, "32+", freeListRange(0, 1))
}
