package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// jsonHeap represents a heap dump in JSON format.
type jsonHeap struct {
	Size       int          `json:"size"`
	Pages      int          `json:"pages"`
	Config     string       `json:"config"`
	Blocks     []jsonBlock  `json:"blocks,omitempty"`
	FreeLists  []jsonList   `json:"free_lists,omitempty"`
	QuickLists []jsonList   `json:"quick_lists,omitempty"`
	Summary    *jsonSummary `json:"summary,omitempty"`
}

// jsonBlock represents one block in JSON format.
type jsonBlock struct {
	Offset        int    `json:"offset"`
	Size          int    `json:"size"`
	State         string `json:"state"`
	PrevAllocated bool   `json:"prev_allocated"`
	Payload       string `json:"payload,omitempty"`
	Truncated     bool   `json:"truncated,omitempty"`
}

// jsonList represents a free list or quick list in JSON format.
type jsonList struct {
	Index   int   `json:"index"`
	Size    int   `json:"size,omitempty"` // Quick lists only
	Offsets []int `json:"offsets"`
}

type jsonSummary struct {
	AllocatedBytes int     `json:"allocated_bytes"`
	AllocatedCount int     `json:"allocated_count"`
	QuickBytes     int     `json:"quick_bytes"`
	QuickCount     int     `json:"quick_count"`
	FreeBytes      int     `json:"free_bytes"`
	FreeCount      int     `json:"free_count"`
	LargestFree    int     `json:"largest_free"`
	Utilization    float64 `json:"utilization"`
	Fragmentation  float64 `json:"fragmentation"`
}

// printHeapJSON prints the heap in JSON format.
func (p *Printer) printHeapJSON() error {
	size := p.heap.HeapSize()
	out := jsonHeap{
		Size:   size,
		Pages:  size / format.PageSize,
		Config: p.heap.Config().Name,
	}

	if p.opts.ShowBlocks {
		for _, b := range p.heap.Blocks() {
			out.Blocks = append(out.Blocks, p.toJSONBlock(b))
		}
	}

	if p.opts.ShowFreeLists {
		for i := range p.heap.NumFreeLists() {
			if l := p.heap.FreeList(i); len(l) > 0 {
				out.FreeLists = append(out.FreeLists, jsonList{Index: i, Offsets: offsets(l)})
			}
		}
	}

	if p.opts.ShowQuickLists {
		for i := range p.heap.NumQuickLists() {
			if l := p.heap.QuickList(i); len(l) > 0 {
				out.QuickLists = append(out.QuickLists, jsonList{
					Index:   i,
					Size:    p.heap.QuickListSize(i),
					Offsets: offsets(l),
				})
			}
		}
	}

	if p.opts.PrintSummary {
		hs := p.heap.HeapStats()
		out.Summary = &jsonSummary{
			AllocatedBytes: hs.AllocatedBytes,
			AllocatedCount: hs.AllocatedCount,
			QuickBytes:     hs.QuickBytes,
			QuickCount:     hs.QuickCount,
			FreeBytes:      hs.FreeBytes,
			FreeCount:      hs.FreeCount,
			LargestFree:    hs.LargestFree,
			Utilization:    hs.Utilization,
			Fragmentation:  hs.Fragmentation,
		}
	}

	// Marshal and write
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}

// printBlockJSON prints one block in JSON format.
func (p *Printer) printBlockJSON(b alloc.BlockInfo) error {
	data, err := json.MarshalIndent(p.toJSONBlock(b), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}

func (p *Printer) toJSONBlock(b alloc.BlockInfo) jsonBlock {
	jb := jsonBlock{
		Offset:        b.Offset,
		Size:          b.Size,
		State:         blockState(b),
		PrevAllocated: b.PrevAllocated,
	}
	if p.opts.ShowPayload {
		if data, truncated := p.payloadPreview(b); data != nil {
			jb.Payload = hex.EncodeToString(data)
			jb.Truncated = truncated
		}
	}
	return jb
}

func offsets(blocks []alloc.BlockInfo) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.Offset
	}
	return out
}
