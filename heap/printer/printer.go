package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/heap/alloc"
)

const (
	DefaultIndentSize      = 2
	DefaultMaxPayloadBytes = 16
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs a human-readable heap dump.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowBlocks lists every block in address order.
	// Default: true
	ShowBlocks bool

	// ShowFreeLists lists the contents of every non-empty free list.
	// Default: true
	ShowFreeLists bool

	// ShowQuickLists lists the contents of every non-empty quick list.
	// Default: true
	ShowQuickLists bool

	// ShowPayload includes a hex preview of allocated payloads.
	// Default: false
	ShowPayload bool

	// MaxPayloadBytes limits how many payload bytes are previewed.
	// Set to 0 for no limit.
	// Default: 16
	MaxPayloadBytes int

	// PrintSummary appends heap totals (sizes, counts, utilization).
	// Default: true
	PrintSummary bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		IndentSize:      DefaultIndentSize,
		ShowBlocks:      true,
		ShowFreeLists:   true,
		ShowQuickLists:  true,
		ShowPayload:     false,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
		PrintSummary:    true,
	}
}

// Heap is the read-only view of an allocator the printer needs.
// *alloc.Allocator satisfies it.
type Heap interface {
	HeapSize() int
	Blocks() []alloc.BlockInfo
	NumFreeLists() int
	FreeList(i int) []alloc.BlockInfo
	NumQuickLists() int
	QuickList(i int) []alloc.BlockInfo
	QuickListSize(i int) int
	Bytes(p alloc.Ptr) []byte
	HeapStats() alloc.HeapStats
	Config() alloc.Config
}

// Printer handles formatted output of heap structures.
type Printer struct {
	opts   Options
	writer io.Writer
	heap   Heap
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(a, os.Stdout, printer.DefaultOptions())
//	p.PrintHeap()
func New(h Heap, w io.Writer, opts Options) *Printer {
	return &Printer{
		heap:   h,
		writer: w,
		opts:   opts,
	}
}

// PrintHeap prints the whole heap: blocks, lists, and summary as enabled by
// the options.
func (p *Printer) PrintHeap() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printHeapJSON()
	case FormatText:
		return p.printHeapText()
	default:
		return p.printHeapText()
	}
}

// PrintBlock prints the block holding payload ptr.
func (p *Printer) PrintBlock(ptr alloc.Ptr) error {
	b, ok := p.findBlock(ptr)
	if !ok {
		return fmt.Errorf("no block with payload 0x%X", uint64(ptr))
	}

	switch p.opts.Format {
	case FormatJSON:
		return p.printBlockJSON(b)
	case FormatText:
		return p.printBlockText(b, 0)
	default:
		return p.printBlockText(b, 0)
	}
}

func (p *Printer) findBlock(ptr alloc.Ptr) (alloc.BlockInfo, bool) {
	for _, b := range p.heap.Blocks() {
		if b.Payload() == ptr {
			return b, true
		}
	}
	return alloc.BlockInfo{}, false
}

// payloadPreview returns the previewed payload bytes and whether they were
// truncated. Free and quick-listed blocks have no payload.
func (p *Printer) payloadPreview(b alloc.BlockInfo) ([]byte, bool) {
	if !b.Allocated || b.InQuickList {
		return nil, false
	}
	data := p.heap.Bytes(b.Payload())
	maxBytes := p.opts.MaxPayloadBytes
	if maxBytes == 0 {
		maxBytes = len(data)
	}
	n := min(len(data), maxBytes)
	return data[:n], len(data) > maxBytes
}

// blockState names a block's state for display.
func blockState(b alloc.BlockInfo) string {
	switch {
	case b.InQuickList:
		return "quick"
	case b.Allocated:
		return "allocated"
	default:
		return "free"
	}
}
