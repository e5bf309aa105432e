package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/format"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	// If help overlay is showing, render it
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	if m.showDetail {
		if b, ok := m.selectedBlock(); ok {
			// Recreated each render so the background reflects the latest model
			detailOverlay := overlay.New(
				NewBlockDetailModel(m.alloc, b, m.showPayload),
				NewMainViewModel(&m),
				overlay.Center, // horizontal position
				overlay.Center, // vertical position
				0,
				0,
			)
			return detailOverlay.View()
		}
	}

	return m.renderMain()
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderStatus(),
	)
}

// renderHeader renders the title, trace name, and last applied request
func (m Model) renderHeader() string {
	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("Heap Explorer"),
		"  ",
		pathStyle.Render(fmt.Sprintf("Trace: %s", m.tracePath)),
		"  ",
		pathStyle.Render(fmt.Sprintf("Config: %s", m.cfg.Name)),
	)

	current := "Request: <start>"
	if op, ok := m.currentOp(); ok {
		current = fmt.Sprintf("Request %s: line %d  %s %d", m.progress(), op.Line, op.Kind, op.ID)
		if op.Kind != trace.Free {
			current += fmt.Sprintf(" (%d bytes)", op.Size)
		}
	}
	if m.stepErr != nil {
		current += "  " + errorStyle.Render("stopped: "+m.stepErr.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, current)
}

// renderContent renders the block pane beside the list pane
func (m Model) renderContent() string {
	blocks := paneStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		paneTitleStyle.Render(fmt.Sprintf("Blocks (%d)", len(m.blocks))),
		m.viewport.View(),
	))

	lists := paneStyle.Width(ListPaneWidth).Render(m.renderLists())
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks, lists)
}

// renderBlocks renders one row per block, highlighting the cursor
func (m Model) renderBlocks() string {
	if len(m.blocks) == 0 {
		return freeStyle.Render("<heap not yet created>")
	}

	var b strings.Builder
	for i, blk := range m.blocks {
		row := fmt.Sprintf("0x%06X %6d %-5s", blk.Offset, blk.Size, blockState(blk))
		if !blk.PrevAllocated {
			row += " pf"
		}
		if m.showPayload && blk.Allocated && !blk.InQuickList {
			data := m.alloc.Bytes(blk.Payload())
			row += " " + truncate(fmt.Sprintf("%X", data), 24)
		}

		if i == m.cursor {
			b.WriteString(selectedStyle.Render(row))
		} else {
			b.WriteString(blockStyle(blk).Render(row))
		}
		if i < len(m.blocks)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderLists renders the non-empty free and quick lists and heap totals
func (m Model) renderLists() string {
	var b strings.Builder

	b.WriteString(paneTitleStyle.Render("Free lists"))
	b.WriteByte('\n')
	empty := true
	for i := range m.alloc.NumFreeLists() {
		l := m.alloc.FreeList(i)
		if len(l) == 0 {
			continue
		}
		empty = false
		sizes := make([]string, len(l))
		for j, blk := range l {
			sizes[j] = fmt.Sprint(blk.Size)
		}
		b.WriteString(truncate(fmt.Sprintf("[%d] %s", i, strings.Join(sizes, " ")), ListPaneWidth-4))
		b.WriteByte('\n')
	}
	if empty {
		b.WriteString(freeStyle.Render("<empty>") + "\n")
	}

	b.WriteByte('\n')
	b.WriteString(paneTitleStyle.Render("Quick lists"))
	b.WriteByte('\n')
	empty = true
	for i := range m.alloc.NumQuickLists() {
		n := m.alloc.QuickListLen(i)
		if n == 0 {
			continue
		}
		empty = false
		b.WriteString(quickStyle.Render(fmt.Sprintf("[%d] size %d: %d/%d", i, m.alloc.QuickListSize(i), n, m.cfg.QuickListMax)))
		b.WriteByte('\n')
	}
	if empty {
		b.WriteString(freeStyle.Render("<empty>") + "\n")
	}

	hs := m.alloc.HeapStats()
	b.WriteByte('\n')
	b.WriteString(paneTitleStyle.Render("Heap"))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "size   %d (%d pages)\n", hs.HeapSize, hs.HeapSize/format.PageSize)
	fmt.Fprintf(&b, "alloc  %d in %d\n", hs.AllocatedBytes, hs.AllocatedCount)
	fmt.Fprintf(&b, "free   %d in %d\n", hs.FreeBytes, hs.FreeCount)
	fmt.Fprintf(&b, "util   %.1f%%", hs.Utilization*100)
	return b.String()
}

// renderStatus renders the status bar with help text
func (m Model) renderStatus() string {
	if m.statusMessage != "" {
		return statusStyle.Width(m.width).Render(m.statusMessage)
	}

	var help strings.Builder
	help.WriteString(helpStyle.Render("n/p: Step"))
	help.WriteString(" │ ")
	help.WriteString(helpStyle.Render("↑/↓: Select"))
	help.WriteString(" │ ")
	help.WriteString(helpStyle.Render("Enter: Details"))
	help.WriteString(" │ ")
	help.WriteString(helpStyle.Render("?: Help"))
	help.WriteString(" │ ")
	help.WriteString(helpStyle.Render("q: Quit"))
	return statusStyle.Width(m.width).Render(help.String())
}

// renderHelpOverlay renders the help overlay
func (m Model) renderHelpOverlay() string {
	var helpContent strings.Builder

	helpContent.WriteString(helpTitleStyle.Render("Keyboard Shortcuts"))
	helpContent.WriteString("\n\n")

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Trace", [][2]string{
			{"n / →", "Apply the next request"},
			{"p / ←", "Undo the last request"},
			{"g / G", "Jump to start / end"},
		}},
		{"Blocks", [][2]string{
			{"↑/↓ or k/j", "Select a block"},
			{"PgUp/PgDn", "Page through blocks"},
			{"Enter", "Block details"},
			{"x", "Toggle payload previews"},
		}},
		{"Other", [][2]string{
			{"c", "Copy heap dump"},
			{"?", "Toggle this help"},
			{"q", "Quit"},
		}},
	}

	for i, s := range sections {
		helpContent.WriteString(modalTitleStyle.Render(s.title))
		helpContent.WriteString("\n")
		for _, kv := range s.keys {
			helpContent.WriteString(helpKeyStyle.Render(kv[0]))
			helpContent.WriteString("  ")
			helpContent.WriteString(helpDescStyle.Render(kv[1]))
			helpContent.WriteString("\n")
		}
		if i < len(sections)-1 {
			helpContent.WriteString("\n")
		}
	}

	modal := modalStyle.Render(helpContent.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}
