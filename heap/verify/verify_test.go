package verify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

const testMagic = 0x1234_5678_9abc_def0

type testBlock struct {
	size  int
	flags uint64
}

// buildHeap lays blocks out from the first block offset, writes footers for
// free blocks, and finishes with an epilogue. The blocks must fill one page.
func buildHeap(t *testing.T, blocks []testBlock, epilogueFlags uint64) []byte {
	t.Helper()
	data := make([]byte, format.PageSize)
	off := format.FirstBlockOffset
	for _, b := range blocks {
		raw := format.Encode(format.Pack(b.size, b.flags), testMagic)
		format.PutU64(data, off, raw)
		if b.flags&format.ThisAllocated == 0 {
			format.PutU64(data, off+b.size-format.FooterSize, raw)
		}
		off += b.size
	}
	require.Equal(t, len(data)-format.EpilogueSize, off, "test blocks must tile the page")
	format.PutU64(data, off, format.Encode(format.Pack(0, format.ThisAllocated|epilogueFlags), testMagic))
	return data
}

func TestAllInvariantsValidHeap(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{32, format.ThisAllocated | format.PrevAllocated},
		{48, format.ThisAllocated | format.InQuickList | format.PrevAllocated},
		{4000, format.PrevAllocated},
	}, 0)
	require.NoError(t, AllInvariants(data, testMagic))
}

func TestAllInvariantsEmptyHeap(t *testing.T) {
	require.NoError(t, AllInvariants(nil, testMagic))
}

func TestLayoutRejectsPartialPage(t *testing.T) {
	err := Layout(make([]byte, 100), testMagic)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Layout", ve.Type)
}

func TestBoundaryTagsPrevBitMismatch(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{32, format.ThisAllocated | format.PrevAllocated},
		{4048, 0}, // claims previous block is free
	}, 0)
	err := BoundaryTags(data, testMagic)
	require.Error(t, err)
	require.Contains(t, err.Error(), "prev-allocated")
}

func TestBoundaryTagsFooterMismatch(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{4080, format.PrevAllocated},
	}, 0)
	format.PutU64(data, format.FirstBlockOffset+4080-format.FooterSize, 0)
	err := BoundaryTags(data, testMagic)
	require.Error(t, err)
	require.Contains(t, err.Error(), "footer")
}

func TestBoundaryTagsWrongMagic(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{4080, format.PrevAllocated},
	}, 0)
	require.Error(t, AllInvariants(data, 0))
}

func TestEpilogueDisagreesWithLastBlock(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{4080, format.ThisAllocated | format.PrevAllocated},
	}, 0) // should carry PrevAllocated
	err := Epilogue(data, testMagic)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Epilogue")
}

func TestCoalescedRejectsAdjacentFreeBlocks(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{64, format.PrevAllocated},
		{4016, 0},
	}, 0)
	require.NoError(t, BoundaryTags(data, testMagic))
	err := Coalesced(data, testMagic)
	require.Error(t, err)
	require.Contains(t, err.Error(), "adjacent")
}

func TestWalkReturnsEveryBlock(t *testing.T) {
	data := buildHeap(t, []testBlock{
		{32, format.ThisAllocated | format.PrevAllocated},
		{32, format.ThisAllocated | format.PrevAllocated},
		{4016, format.PrevAllocated},
	}, 0)
	blocks, err := Walk(data, testMagic)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	require.Equal(t, 8, blocks[0].Offset)
	require.Equal(t, 40, blocks[1].Offset)
	require.Equal(t, 72, blocks[2].Offset)
}
