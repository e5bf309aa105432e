package main

import (
	"bytes"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// If help is showing, handle help keys
		if m.showHelp {
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}

		// Block detail is a modal
		if m.showDetail {
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Enter) {
				m.showDetail = false
				return m, nil
			}
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case m.err != nil:
		// Nothing else works without a trace

	case key.Matches(msg, m.keys.Next):
		m.step(1)
	case key.Matches(msg, m.keys.Prev):
		m.step(-1)
	case key.Matches(msg, m.keys.First):
		m.step(-m.pos)
	case key.Matches(msg, m.keys.Last):
		m.step(len(m.ops) - m.pos)

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(1, m.viewport.Height))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(1, m.viewport.Height))

	case key.Matches(msg, m.keys.Enter):
		if _, ok := m.selectedBlock(); ok {
			m.showDetail = true
		}

	case key.Matches(msg, m.keys.Payload):
		m.showPayload = !m.showPayload
		if m.showPayload {
			m.statusMessage = "Payload previews on"
		} else {
			m.statusMessage = "Payload previews off"
		}
		m.refreshViewport()

	case key.Matches(msg, m.keys.Copy):
		m.copyHeapDump()
	}
	return m, nil
}

// heapDump renders the current heap with the text printer.
func (m Model) heapDump() (string, error) {
	var buf bytes.Buffer
	opts := printer.DefaultOptions()
	opts.ShowPayload = m.showPayload
	if err := printer.New(m.alloc, &buf, opts).PrintHeap(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// copyHeapDump copies the heap dump to the clipboard
func (m *Model) copyHeapDump() {
	dump, err := m.heapDump()
	if err == nil {
		err = clipboard.WriteAll(dump)
	}
	if err != nil {
		logger.Warn("copy failed", "error", err)
		m.statusMessage = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.statusMessage = "Heap dump copied to clipboard"
}
