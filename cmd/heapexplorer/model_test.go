package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/trace"
)

// TestModelStartsEmpty tests that a loaded trace opens before the first request,
// with no heap created yet
func TestModelStartsEmpty(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)

	model := helper.GetModel()
	if model.err != nil {
		t.Fatalf("unexpected load error: %v", model.err)
	}
	if model.pos != 0 {
		t.Errorf("pos = %d, want 0", model.pos)
	}
	if len(model.ops) != 4 {
		t.Errorf("ops = %d, want 4", len(model.ops))
	}
	if len(model.blocks) != 0 {
		t.Errorf("blocks = %+v, want none before the first request", model.blocks)
	}
	if !strings.Contains(helper.GetView(), "heap not yet created") {
		t.Error("view should say the heap does not exist yet")
	}

	// Nothing to select, so Enter does not open details
	helper.SendKey(tea.KeyEnter)
	if helper.GetModel().showDetail {
		t.Error("Enter should do nothing without blocks")
	}
}

// TestStepForwardAndBack tests stepping through requests with n and p
func TestStepForwardAndBack(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)

	helper.SendKeyRune('n')
	model := helper.GetModel()
	if model.pos != 1 || len(model.blocks) != 2 {
		t.Fatalf("after one step: pos=%d blocks=%d, want 1 and 2", model.pos, len(model.blocks))
	}
	if model.blocks[0].Size != 32 || !model.blocks[0].Allocated {
		t.Errorf("first block = %+v, want allocated 32", model.blocks[0])
	}

	helper.SendKeyRune('n').SendKeyRune('n')
	model = helper.GetModel()
	if !model.blocks[0].InQuickList {
		t.Errorf("freed 32-byte block should be parked in a quick list: %+v", model.blocks[0])
	}

	helper.SendKeyRune('n')
	model = helper.GetModel()
	if model.blocks[0].InQuickList || !model.blocks[0].Allocated {
		t.Errorf("quick hit should hand the parked block back out: %+v", model.blocks[0])
	}

	// Past the end is a no-op
	helper.SendKeyRune('n')
	if got := helper.GetModel().pos; got != 4 {
		t.Errorf("pos = %d after stepping past end, want 4", got)
	}

	helper.SendKeyRune('p')
	model = helper.GetModel()
	if model.pos != 3 || !model.blocks[0].InQuickList {
		t.Errorf("step back: pos=%d quick=%v, want 3 and true", model.pos, model.blocks[0].InQuickList)
	}
}

// TestJumpFirstLast tests g and G
func TestJumpFirstLast(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()

	helper.SendKeyRune('G')
	if got := helper.GetModel().pos; got != 4 {
		t.Errorf("pos after G = %d, want 4", got)
	}

	helper.SendKeyRune('g')
	model := helper.GetModel()
	if model.pos != 0 || len(model.blocks) != 0 {
		t.Errorf("after g: pos=%d blocks=%d, want 0 and 0", model.pos, len(model.blocks))
	}
	if model.alloc.HeapSize() != 0 {
		t.Errorf("heap size after g = %d, want 0", model.alloc.HeapSize())
	}

	// Stepping from the start creates the heap again
	helper.SendKeyRune('n')
	model = helper.GetModel()
	if len(model.blocks) != 2 || model.blocks[1].Size != 4048 {
		t.Errorf("after g then n: blocks = %+v, want 32 + 4048", model.blocks)
	}
}

// TestReplayStopsOnUnknownID tests that freeing an id with no block stops
// replay on that request
func TestReplayStopsOnUnknownID(t *testing.T) {
	helper := NewTestHelper("testdata/unknown_id.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)

	helper.SendKeyRune('G')
	model := helper.GetModel()
	if !errors.Is(model.stepErr, trace.ErrUnknownID) {
		t.Fatalf("stepErr = %v, want ErrUnknownID from the second free", model.stepErr)
	}
	if model.pos != 2 {
		t.Errorf("pos = %d, want 2", model.pos)
	}
	if !strings.Contains(helper.GetView(), "stopped") {
		t.Error("view should report the stopped replay")
	}

	helper.SendKeyRune('n')
	model = helper.GetModel()
	if model.pos != 2 {
		t.Errorf("stepping past a fault should not advance, pos = %d", model.pos)
	}
	if !strings.HasPrefix(model.statusMessage, "Replay stopped") {
		t.Errorf("status = %q", model.statusMessage)
	}

	helper.SendKeyRune('p')
	model = helper.GetModel()
	if model.stepErr != nil || model.pos != 1 {
		t.Errorf("stepping back should clear the fault: pos=%d err=%v", model.pos, model.stepErr)
	}
}

// TestCursorMovement tests block selection bounds
func TestCursorMovement(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)

	helper.SendKeyRune('n').SendKeyRune('n')
	helper.SendKey(tea.KeyDown).SendKey(tea.KeyDown).SendKey(tea.KeyDown)
	model := helper.GetModel()
	if model.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped to last block)", model.cursor)
	}

	helper.SendKeyRune('k')
	if got := helper.GetModel().cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}

	// Rewinding to a heap with fewer blocks clamps the cursor
	helper.SendKeyRune('G').SendKey(tea.KeyDown).SendKeyRune('g')
	if got := helper.GetModel().cursor; got != 0 {
		t.Errorf("cursor = %d after rewind, want 0", got)
	}
}

// TestBlockDetail tests opening and closing the detail modal
func TestBlockDetail(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)
	helper.SendKeyRune('n')

	helper.SendKey(tea.KeyEnter)
	model := helper.GetModel()
	if !model.showDetail {
		t.Fatal("Enter should open block details")
	}
	view := helper.GetView()
	if !strings.Contains(view, "Block 0x8") {
		t.Errorf("detail view missing block title:\n%s", view)
	}
	if !strings.Contains(view, "Stored header") {
		t.Error("detail view missing header words")
	}

	helper.SendKey(tea.KeyEsc)
	if helper.GetModel().showDetail {
		t.Error("Esc should close block details")
	}
}

// TestHelpToggle tests toggling help overlay with '?'
func TestHelpToggle(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)

	helper.SendKeyRune('?')
	if !helper.GetModel().showHelp {
		t.Fatal("Help should be shown after pressing '?'")
	}
	if !strings.Contains(helper.GetView(), "Keyboard Shortcuts") {
		t.Error("help overlay not rendered")
	}

	// Keys other than dismiss are swallowed while help is open
	helper.SendKeyRune('n')
	if helper.GetModel().pos != 0 {
		t.Error("n should not step while help is shown")
	}

	helper.SendKey(tea.KeyEsc)
	if helper.GetModel().showHelp {
		t.Error("Help should be hidden after Esc")
	}
}

// TestPayloadToggle tests the payload preview toggle
func TestPayloadToggle(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(120, 40)

	helper.SendKeyRune('x')
	model := helper.GetModel()
	if !model.showPayload || model.statusMessage != "Payload previews on" {
		t.Errorf("showPayload=%v status=%q", model.showPayload, model.statusMessage)
	}
	helper.SendKeyRune('x')
	if helper.GetModel().showPayload {
		t.Error("second x should turn previews off")
	}
}

// TestMissingTrace tests that load errors render instead of panicking
func TestMissingTrace(t *testing.T) {
	helper := NewTestHelper("testdata/does-not-exist.trace")
	defer helper.Close()

	if helper.GetModel().err == nil {
		t.Fatal("expected a load error")
	}
	if !strings.Contains(helper.GetView(), "Error:") {
		t.Error("view should show the load error")
	}

	// Navigation is ignored without a trace
	helper.SendKeyRune('n')
	if helper.GetModel().pos != 0 {
		t.Error("n should do nothing without a trace")
	}
}

// TestViewShowsLists tests the list pane contents
func TestViewShowsLists(t *testing.T) {
	helper := NewTestHelper("testdata/walk.trace")
	defer helper.Close()
	helper.SendWindowSize(140, 40)
	helper.SendKeyRune('n').SendKeyRune('n').SendKeyRune('n')

	view := helper.GetView()
	for _, want := range []string{"Heap Explorer", "Free lists", "Quick lists", "size 32: 1/5", "Request 3/4"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

// TestNoQuickListsConfig tests that the explorer honours the chosen config
func TestNoQuickListsConfig(t *testing.T) {
	m := NewModel("testdata/walk.trace", alloc.ConfigNoQuickLists, 16)
	defer m.Close()

	if err := m.seek(3); err != nil {
		t.Fatal(err)
	}
	if m.blocks[0].InQuickList || m.blocks[0].Allocated {
		t.Errorf("without quick lists the freed block should be free: %+v", m.blocks[0])
	}
}
