package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// MainViewModel wraps the main UI for use as overlay background
type MainViewModel struct {
	model *Model
}

func NewMainViewModel(m *Model) *MainViewModel {
	return &MainViewModel{model: m}
}

func (m *MainViewModel) Init() tea.Cmd {
	return nil
}

func (m *MainViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Main model updates are handled in the parent Model's Update
	return m, nil
}

func (m *MainViewModel) View() string {
	return m.model.renderMain()
}

// BlockDetailModel renders one block as a modal
type BlockDetailModel struct {
	heap        *alloc.Allocator
	block       alloc.BlockInfo
	showPayload bool
}

func NewBlockDetailModel(a *alloc.Allocator, b alloc.BlockInfo, showPayload bool) *BlockDetailModel {
	return &BlockDetailModel{heap: a, block: b, showPayload: showPayload}
}

func (d *BlockDetailModel) Init() tea.Cmd {
	return nil
}

func (d *BlockDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return d, nil
}

func (d *BlockDetailModel) View() string {
	b := d.block
	var s strings.Builder

	s.WriteString(modalTitleStyle.Render(fmt.Sprintf("Block 0x%X", b.Offset)))
	s.WriteString("\n")
	fmt.Fprintf(&s, "State:          %s\n", blockStyle(b).Render(blockState(b)))
	fmt.Fprintf(&s, "Size:           %d bytes\n", b.Size)
	fmt.Fprintf(&s, "Payload:        0x%X (%d usable bytes)\n", uint64(b.Payload()), b.Size-format.HeaderSize)
	fmt.Fprintf(&s, "Prev allocated: %v\n", b.PrevAllocated)
	fmt.Fprintf(&s, "Free list:      %d\n", d.heap.SizeClass(b.Size))

	raw := format.ReadU64(d.heap.Raw(), b.Offset)
	fmt.Fprintf(&s, "Stored header:  0x%016X\n", raw)
	fmt.Fprintf(&s, "Decoded header: 0x%016X", raw^d.heap.Magic())

	if d.showPayload && b.Allocated && !b.InQuickList {
		data := d.heap.Bytes(b.Payload())
		fmt.Fprintf(&s, "\n\n%s", truncate(fmt.Sprintf("%X", data), 64))
	}

	return modalStyle.Render(s.String())
}
