package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes one invariant violation.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all physical heap invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
// An empty heap (never initialized) is valid.
func AllInvariants(data []byte, magic uint64) error {
	if len(data) == 0 {
		return nil
	}
	if err := Layout(data, magic); err != nil {
		return err
	}
	if err := BoundaryTags(data, magic); err != nil {
		return err
	}
	if err := Epilogue(data, magic); err != nil {
		return err
	}
	return Coalesced(data, magic)
}

// Walk decodes every block between the pad and the epilogue.
func Walk(data []byte, magic uint64) ([]format.Block, error) {
	end := len(data) - format.EpilogueSize
	var blocks []format.Block
	for off := format.FirstBlockOffset; off < end; {
		blk, next, err := format.NextBlock(data, off, magic)
		if err != nil {
			return nil, &ValidationError{Type: "Layout", Message: err.Error(), Offset: off}
		}
		if blk.Size == 0 {
			return nil, &ValidationError{
				Type:    "Layout",
				Message: "size-0 header before the end of the heap",
				Offset:  off,
			}
		}
		if next > end {
			return nil, &ValidationError{
				Type:    "Layout",
				Message: fmt.Sprintf("block of size %d runs into the epilogue", blk.Size),
				Offset:  off,
			}
		}
		blocks = append(blocks, blk)
		off = next
	}
	return blocks, nil
}

// Layout validates the heap size and that blocks tile it exactly.
func Layout(data []byte, magic uint64) error {
	if len(data)%format.PageSize != 0 {
		return &ValidationError{
			Type:    "Layout",
			Message: fmt.Sprintf("heap length %d is not a whole number of pages", len(data)),
			Offset:  -1,
		}
	}
	_, err := Walk(data, magic)
	return err
}

// BoundaryTags validates prev-allocated bits and free-block footers.
func BoundaryTags(data []byte, magic uint64) error {
	blocks, err := Walk(data, magic)
	if err != nil {
		return err
	}
	prevAllocated := true
	for _, blk := range blocks {
		if blk.PrevAllocated() != prevAllocated {
			return &ValidationError{
				Type: "BoundaryTags",
				Message: fmt.Sprintf("prev-allocated bit is %v, previous block allocated is %v",
					blk.PrevAllocated(), prevAllocated),
				Offset: blk.Offset,
			}
		}
		if blk.Quick() && !blk.Allocated() {
			return &ValidationError{
				Type:    "BoundaryTags",
				Message: "quick-listed block is not marked allocated",
				Offset:  blk.Offset,
			}
		}
		if !blk.Allocated() {
			header := format.ReadU64(data, blk.Offset)
			footer := format.ReadU64(data, blk.FooterOffset())
			if header != footer {
				return &ValidationError{
					Type:    "BoundaryTags",
					Message: fmt.Sprintf("footer 0x%X does not match header 0x%X", footer, header),
					Offset:  blk.FooterOffset(),
				}
			}
		}
		prevAllocated = blk.Allocated()
	}
	return nil
}

// Epilogue validates the trailing header word.
func Epilogue(data []byte, magic uint64) error {
	off := len(data) - format.EpilogueSize
	epi, err := format.ReadHeader(data, off, magic)
	if err != nil {
		return &ValidationError{Type: "Epilogue", Message: err.Error(), Offset: off}
	}
	if epi.Size != 0 || !epi.Allocated() {
		return &ValidationError{
			Type:    "Epilogue",
			Message: fmt.Sprintf("want size 0 allocated, got size %d allocated=%v", epi.Size, epi.Allocated()),
			Offset:  off,
		}
	}
	blocks, err := Walk(data, magic)
	if err != nil {
		return err
	}
	if len(blocks) > 0 && epi.PrevAllocated() != blocks[len(blocks)-1].Allocated() {
		return &ValidationError{
			Type:    "Epilogue",
			Message: "prev-allocated bit disagrees with the last block",
			Offset:  off,
		}
	}
	return nil
}

// Coalesced validates that no two free blocks are adjacent.
func Coalesced(data []byte, magic uint64) error {
	blocks, err := Walk(data, magic)
	if err != nil {
		return err
	}
	for i := 1; i < len(blocks); i++ {
		if !blocks[i-1].Allocated() && !blocks[i].Allocated() {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free blocks of size %d and %d are adjacent", blocks[i-1].Size, blocks[i].Size),
				Offset:  blocks[i].Offset,
			}
		}
	}
	return nil
}
