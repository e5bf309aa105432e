package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/pages"
)

// Layout constants
const (
	HeaderHeight   = 3  // Title, trace, and current request lines
	StatusHeight   = 2  // Status bar plus its top margin
	ListPaneWidth  = 44 // Width of the free/quick list pane
	MinBlockHeight = 5  // Smallest block pane we render
)

// Model is the main application model
type Model struct {
	tracePath string
	cfg       alloc.Config
	maxPages  int
	ops       []trace.Op
	keys      KeyMap

	// Heap state after applying ops[:pos]
	pos      int
	region   *pages.Region
	alloc    *alloc.Allocator
	stepErr  error // Error that stopped replay at pos, if any
	blocks   []alloc.BlockInfo
	cursor   int // Selected block index
	viewport viewport.Model

	width  int
	height int

	showHelp    bool
	showDetail  bool
	showPayload bool

	// Status message for temporary feedback
	statusMessage string

	err error
}

// NewModel loads the trace at path. Load errors are kept on the model and
// rendered by View.
func NewModel(path string, cfg alloc.Config, maxPages int) Model {
	m := Model{
		tracePath: path,
		cfg:       cfg,
		maxPages:  maxPages,
		keys:      DefaultKeyMap(),
		viewport:  viewport.New(80, 20),
	}

	f, err := os.Open(path)
	if err != nil {
		m.err = err
		return m
	}
	defer f.Close()

	m.ops, err = trace.Parse(f)
	if err != nil {
		m.err = err
		return m
	}

	if err := m.seek(0); err != nil {
		m.err = err
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Close releases the heap region.
func (m Model) Close() error {
	if m.region == nil {
		return nil
	}
	return m.region.Close()
}

// seek rebuilds the heap from scratch and applies the first n requests.
// Replay stops early at a request that fails hard (unknown id or a fault),
// leaving pos on that request.
func (m *Model) seek(n int) error {
	n = max(0, min(n, len(m.ops)))

	if m.region != nil {
		_ = m.region.Close()
	}
	region, err := pages.NewBuffer(m.maxPages)
	if err != nil {
		return err
	}
	a, err := alloc.New(region, &m.cfg)
	if err != nil {
		_ = region.Close()
		return err
	}
	m.region, m.alloc, m.stepErr = region, a, nil

	r := trace.NewReplayer(a)
	m.pos = 0
	for _, op := range m.ops[:n] {
		if err := r.Step(op); err != nil {
			m.stepErr = err
			logger.Warn("replay stopped", "line", op.Line, "error", err)
			break
		}
		m.pos++
	}

	m.blocks = a.Blocks()
	m.cursor = max(0, min(m.cursor, len(m.blocks)-1))
	logger.Debug("seek", "pos", m.pos, "blocks", len(m.blocks), "heap", a.HeapSize())
	m.refreshViewport()
	return nil
}

// step moves delta requests forward or back.
func (m *Model) step(delta int) {
	target := m.pos + delta
	if m.stepErr != nil && delta > 0 {
		m.statusMessage = "Replay stopped: " + m.stepErr.Error()
		return
	}
	if target < 0 || target > len(m.ops) {
		return
	}
	if err := m.seek(target); err != nil {
		m.err = err
		return
	}
	m.statusMessage = ""
}

// currentOp returns the last applied request, if any.
func (m Model) currentOp() (trace.Op, bool) {
	if m.pos == 0 {
		return trace.Op{}, false
	}
	return m.ops[m.pos-1], true
}

// selectedBlock returns the block under the cursor.
func (m Model) selectedBlock() (alloc.BlockInfo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.blocks) {
		return alloc.BlockInfo{}, false
	}
	return m.blocks[m.cursor], true
}

// moveCursor moves the block selection and keeps it on screen.
func (m *Model) moveCursor(delta int) {
	if len(m.blocks) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.blocks)-1))
	m.refreshViewport()
}

// refreshViewport re-renders the block list into the viewport and scrolls
// so the cursor row is visible.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderBlocks())
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if h := m.viewport.Height; h > 0 && m.cursor >= m.viewport.YOffset+h {
		m.viewport.SetYOffset(m.cursor - h + 1)
	}
}

// resize lays the panes out for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = max(20, width-ListPaneWidth-4)
	m.viewport.Height = max(MinBlockHeight, height-HeaderHeight-StatusHeight-2)
	m.refreshViewport()
}

// progress describes the replay position.
func (m Model) progress() string {
	return fmt.Sprintf("%d/%d", m.pos, len(m.ops))
}
