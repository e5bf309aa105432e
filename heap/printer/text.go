package printer

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// printHeapText prints the heap in human-readable text format.
func (p *Printer) printHeapText() error {
	size := p.heap.HeapSize()
	fmt.Fprintf(p.writer, "HEAP 0x%X bytes (%d pages)\n", size, size/format.PageSize)
	if size == 0 {
		fmt.Fprintf(p.writer, "  <uninitialized>\n")
		return nil
	}

	if p.opts.ShowBlocks {
		fmt.Fprintf(p.writer, "BLOCKS\n")
		for _, b := range p.heap.Blocks() {
			if err := p.printBlockText(b, 1); err != nil {
				return err
			}
		}
	}

	if p.opts.ShowFreeLists {
		fmt.Fprintf(p.writer, "FREE LISTS\n")
		p.printFreeListsText()
	}

	if p.opts.ShowQuickLists {
		fmt.Fprintf(p.writer, "QUICK LISTS\n")
		p.printQuickListsText()
	}

	if p.opts.PrintSummary {
		p.printSummaryText()
	}
	return nil
}

// printBlockText prints one block on a single line.
func (p *Printer) printBlockText(b alloc.BlockInfo, depth int) error {
	indent := strings.Repeat(" ", depth*p.opts.IndentSize)

	prev := "prev-free"
	if b.PrevAllocated {
		prev = "prev-alloc"
	}
	fmt.Fprintf(p.writer, "%s[0x%08X] %6d  %-9s %s", indent, b.Offset, b.Size, blockState(b), prev)

	if p.opts.ShowPayload {
		if data, truncated := p.payloadPreview(b); data != nil {
			suffix := ""
			if truncated {
				suffix = "..."
			}
			fmt.Fprintf(p.writer, "  %X%s", data, suffix)
		}
	}
	fmt.Fprintln(p.writer)
	return nil
}

func (p *Printer) printFreeListsText() {
	indent := strings.Repeat(" ", p.opts.IndentSize)
	empty := true
	for i := range p.heap.NumFreeLists() {
		blocks := p.heap.FreeList(i)
		if len(blocks) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(p.writer, "%s[%d] %s:", indent, i, freeListRange(i, p.heap.NumFreeLists()))
		for _, b := range blocks {
			fmt.Fprintf(p.writer, " 0x%X(%d)", b.Offset, b.Size)
		}
		fmt.Fprintln(p.writer)
	}
	if empty {
		fmt.Fprintf(p.writer, "%s<empty>\n", indent)
	}
}

func (p *Printer) printQuickListsText() {
	indent := strings.Repeat(" ", p.opts.IndentSize)
	empty := true
	for i := range p.heap.NumQuickLists() {
		blocks := p.heap.QuickList(i)
		if len(blocks) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(p.writer, "%s[%d] size %d (%d/%d):", indent, i, p.heap.QuickListSize(i),
			len(blocks), p.heap.Config().QuickListMax)
		for _, b := range blocks {
			fmt.Fprintf(p.writer, " 0x%X", b.Offset)
		}
		fmt.Fprintln(p.writer)
	}
	if empty {
		fmt.Fprintf(p.writer, "%s<empty>\n", indent)
	}
}

func (p *Printer) printSummaryText() {
	mp := message.NewPrinter(language.English)
	indent := strings.Repeat(" ", p.opts.IndentSize)
	hs := p.heap.HeapStats()

	mp.Fprintf(p.writer, "SUMMARY\n")
	mp.Fprintf(p.writer, "%sallocated: %d bytes in %d blocks\n", indent, hs.AllocatedBytes, hs.AllocatedCount)
	mp.Fprintf(p.writer, "%squick:     %d bytes in %d blocks\n", indent, hs.QuickBytes, hs.QuickCount)
	mp.Fprintf(p.writer, "%sfree:      %d bytes in %d blocks (largest %d)\n", indent, hs.FreeBytes, hs.FreeCount, hs.LargestFree)
	mp.Fprintf(p.writer, "%sutilization: %.2f%%\n", indent, hs.Utilization*100)
}

// freeListRange describes the sizes list i holds.
func freeListRange(i, n int) string {
	lo := format.MinBlockSize << i >> 1
	hi := format.MinBlockSize << i
	switch {
	case i == 0 && n == 1:
		return "32+"
	case i == 0:
		return "32"
	case i == n-1:
		return fmt.Sprintf("%d+", lo+1)
	default:
		return fmt.Sprintf("%d-%d", lo+1, hi)
	}
}
