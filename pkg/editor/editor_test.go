package editor

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func typeString(le *LineEditor, s string) {
	for _, r := range s {
		le.ProcessKeyEvent(runeKey(r))
	}
}

func submit(t *testing.T, le *LineEditor, s string) Action {
	t.Helper()

	typeString(le, s)
	action := le.ProcessKeyEvent(key(tcell.KeyEnter))
	if action.Kind != ActionSubmit {
		t.Fatalf("submitting %q gave action kind %d, want ActionSubmit", s, action.Kind)
	}
	return action
}

func TestLineEditor_TypeAndSubmit(t *testing.T) {
	le := NewLineEditor(0)

	action := submit(t, le, `print "hi"`)
	if action.Line != `print "hi"` {
		t.Errorf("submitted line = %q, want %q", action.Line, `print "hi"`)
	}

	if le.Line() != "" {
		t.Errorf("buffer after submit = %q, want empty", le.Line())
	}
	if le.Cursor() != 0 {
		t.Errorf("cursor after submit = %d, want 0", le.Cursor())
	}

	if le.History().Len() != 1 || le.History().Entry(0) != `print "hi"` {
		t.Errorf("history after submit = %d entries, want the submitted line stored", le.History().Len())
	}
}

func TestLineEditor_EmptyLineIsNoOp(t *testing.T) {
	le := NewLineEditor(0)

	action := le.ProcessKeyEvent(key(tcell.KeyEnter))
	if action.Kind != ActionNone {
		t.Errorf("Enter on empty buffer gave kind %d, want ActionNone", action.Kind)
	}
	if le.History().Len() != 0 {
		t.Error("empty line must not be enqueued to history")
	}
}

func TestLineEditor_WhitespaceLineSubmittedVerbatim(t *testing.T) {
	le := NewLineEditor(0)

	typeString(le, "   ")
	action := le.ProcessKeyEvent(key(tcell.KeyEnter))
	if action.Kind != ActionSubmit || action.Line != "   " {
		t.Errorf("whitespace submit = (%d, %q), want verbatim submit", action.Kind, action.Line)
	}
}

func TestLineEditor_CursorClamping(t *testing.T) {
	le := NewLineEditor(0)
	typeString(le, "ab")

	// Right at end is a no-op.
	le.ProcessKeyEvent(key(tcell.KeyRight))
	if le.Cursor() != 2 || le.Line() != "ab" {
		t.Errorf("Right at end changed state: cursor=%d line=%q", le.Cursor(), le.Line())
	}

	le.ProcessKeyEvent(key(tcell.KeyHome))
	if le.Cursor() != 0 {
		t.Errorf("Home gave cursor %d, want 0", le.Cursor())
	}

	// Left at 0 is a no-op.
	le.ProcessKeyEvent(key(tcell.KeyLeft))
	if le.Cursor() != 0 || le.Line() != "ab" {
		t.Errorf("Left at 0 changed state: cursor=%d line=%q", le.Cursor(), le.Line())
	}

	le.ProcessKeyEvent(key(tcell.KeyEnd))
	if le.Cursor() != 2 {
		t.Errorf("End gave cursor %d, want 2", le.Cursor())
	}
}

func TestLineEditor_BackspaceDelete(t *testing.T) {
	le := NewLineEditor(0)
	typeString(le, "abc")

	// Backspace at 0 is a no-op.
	le.ProcessKeyEvent(key(tcell.KeyHome))
	le.ProcessKeyEvent(key(tcell.KeyBackspace2))
	if le.Line() != "abc" || le.Cursor() != 0 {
		t.Errorf("Backspace at 0 changed state: %q cursor=%d", le.Line(), le.Cursor())
	}

	// Delete removes the char at the cursor.
	le.ProcessKeyEvent(key(tcell.KeyDelete))
	if le.Line() != "bc" {
		t.Errorf("Delete gave %q, want %q", le.Line(), "bc")
	}

	// Delete at end is a no-op.
	le.ProcessKeyEvent(key(tcell.KeyEnd))
	le.ProcessKeyEvent(key(tcell.KeyDelete))
	if le.Line() != "bc" {
		t.Errorf("Delete at end gave %q, want %q", le.Line(), "bc")
	}

	// Backspace removes the char before the cursor.
	le.ProcessKeyEvent(key(tcell.KeyBackspace2))
	if le.Line() != "b" || le.Cursor() != 1 {
		t.Errorf("Backspace gave %q cursor=%d, want %q cursor=1", le.Line(), le.Cursor(), "b")
	}
}

func TestLineEditor_TextBeforeCursor(t *testing.T) {
	le := NewLineEditor(0)
	typeString(le, "abあc")

	le.ProcessKeyEvent(key(tcell.KeyLeft))
	if got := le.TextBeforeCursor(); got != "abあ" {
		t.Errorf("TextBeforeCursor() = %q, want %q", got, "abあ")
	}

	le.ProcessKeyEvent(key(tcell.KeyHome))
	if got := le.TextBeforeCursor(); got != "" {
		t.Errorf("TextBeforeCursor() at home = %q, want empty", got)
	}
}

func TestLineEditor_InsertMidBuffer(t *testing.T) {
	le := NewLineEditor(0)
	typeString(le, "ac")

	le.ProcessKeyEvent(key(tcell.KeyLeft))
	le.ProcessKeyEvent(runeKey('b'))

	if le.Line() != "abc" {
		t.Errorf("mid-buffer insert gave %q, want %q", le.Line(), "abc")
	}
	if le.Cursor() != 2 {
		t.Errorf("cursor after insert = %d, want 2", le.Cursor())
	}
}

func TestLineEditor_OverwriteMode(t *testing.T) {
	le := NewLineEditor(0)
	typeString(le, "abc")

	le.ProcessKeyEvent(key(tcell.KeyInsert))
	if !le.Overwrite() {
		t.Fatal("Insert did not enable overwrite mode")
	}

	// Overwrite mid-buffer replaces rather than inserts.
	le.ProcessKeyEvent(key(tcell.KeyHome))
	le.ProcessKeyEvent(runeKey('X'))
	if le.Line() != "Xbc" {
		t.Errorf("overwrite gave %q, want %q", le.Line(), "Xbc")
	}
	if le.Cursor() != 1 {
		t.Errorf("cursor after overwrite = %d, want 1", le.Cursor())
	}

	// Overwrite at end appends.
	le.ProcessKeyEvent(key(tcell.KeyEnd))
	le.ProcessKeyEvent(runeKey('d'))
	if le.Line() != "Xbcd" {
		t.Errorf("overwrite at end gave %q, want %q", le.Line(), "Xbcd")
	}

	// Toggle back to insert.
	le.ProcessKeyEvent(key(tcell.KeyInsert))
	if le.Overwrite() {
		t.Error("second Insert did not restore insert mode")
	}
}

func TestLineEditor_HistoryNavigation(t *testing.T) {
	le := NewLineEditor(0)
	submit(t, le, "a")
	submit(t, le, "b")

	// Up recalls the newest entry first.
	le.ProcessKeyEvent(key(tcell.KeyUp))
	if le.Line() != "b" {
		t.Errorf("Up gave %q, want %q", le.Line(), "b")
	}

	le.ProcessKeyEvent(key(tcell.KeyUp))
	if le.Line() != "a" {
		t.Errorf("second Up gave %q, want %q", le.Line(), "a")
	}

	// Up at the oldest boundary is a no-op.
	le.ProcessKeyEvent(key(tcell.KeyUp))
	if le.Line() != "a" {
		t.Errorf("Up past oldest gave %q, want %q", le.Line(), "a")
	}

	le.ProcessKeyEvent(key(tcell.KeyDown))
	if le.Line() != "b" {
		t.Errorf("Down gave %q, want %q", le.Line(), "b")
	}

	// Down past the newest returns to the (empty) live buffer.
	le.ProcessKeyEvent(key(tcell.KeyDown))
	if le.Line() != "" {
		t.Errorf("Down past newest gave %q, want empty live buffer", le.Line())
	}

	// And another Down stays there.
	le.ProcessKeyEvent(key(tcell.KeyDown))
	if le.Line() != "" {
		t.Errorf("Down at live gave %q, want empty", le.Line())
	}
}

func TestLineEditor_UpDownRestoresLiveEdit(t *testing.T) {
	le := NewLineEditor(0)
	submit(t, le, "stored")

	typeString(le, "in progress")

	le.ProcessKeyEvent(key(tcell.KeyUp))
	if le.Line() != "stored" {
		t.Fatalf("Up gave %q, want %q", le.Line(), "stored")
	}

	le.ProcessKeyEvent(key(tcell.KeyDown))
	if le.Line() != "in progress" {
		t.Errorf("Down restored %q, want pre-navigation contents %q", le.Line(), "in progress")
	}
	if le.Cursor() != len("in progress") {
		t.Errorf("cursor = %d, want end of restored line", le.Cursor())
	}
}

func TestLineEditor_PageUpPageDown(t *testing.T) {
	le := NewLineEditor(0)
	submit(t, le, "a")
	submit(t, le, "b")

	typeString(le, "live")

	// PgUp jumps to the oldest entry; a second PgUp does not wrap.
	le.ProcessKeyEvent(key(tcell.KeyPgUp))
	if le.Line() != "a" {
		t.Errorf("PgUp gave %q, want %q", le.Line(), "a")
	}

	le.ProcessKeyEvent(key(tcell.KeyPgUp))
	if le.Line() != "a" {
		t.Errorf("second PgUp gave %q, want %q (no wrap)", le.Line(), "a")
	}

	// PgDn jumps to the in-progress live edit, not a stored entry.
	le.ProcessKeyEvent(key(tcell.KeyPgDn))
	if le.Line() != "live" {
		t.Errorf("PgDn gave %q, want live edit %q", le.Line(), "live")
	}
}

func TestLineEditor_RecallEditSubmitRecordsEditedText(t *testing.T) {
	le := NewLineEditor(0)
	submit(t, le, "step")

	le.ProcessKeyEvent(key(tcell.KeyUp))
	typeString(le, " over")

	action := le.ProcessKeyEvent(key(tcell.KeyEnter))
	if action.Kind != ActionSubmit || action.Line != "step over" {
		t.Fatalf("recall-edit-submit gave (%d, %q), want edited text", action.Kind, action.Line)
	}

	// The original stored entry is untouched; the edited text is a new
	// newest entry.
	h := le.History()
	if h.Len() != 2 {
		t.Fatalf("history length = %d, want 2", h.Len())
	}
	if h.Entry(0) != "step" {
		t.Errorf("stored entry mutated to %q", h.Entry(0))
	}
	if h.Entry(1) != "step over" {
		t.Errorf("newest entry = %q, want edited text", h.Entry(1))
	}
}

func TestLineEditor_InterruptLeavesBuffer(t *testing.T) {
	le := NewLineEditor(0)
	typeString(le, "partial")

	action := le.ProcessKeyEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	if action.Kind != ActionInterrupt {
		t.Fatalf("Ctrl-C gave kind %d, want ActionInterrupt", action.Kind)
	}

	if le.Line() != "partial" || le.Cursor() != len("partial") {
		t.Errorf("Ctrl-C altered the buffer: %q cursor=%d", le.Line(), le.Cursor())
	}
}

func TestHistory_CapEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for _, line := range []string{"a", "b", "c", "d"} {
		h.Append(line)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Entry(0) != "b" || h.Entry(2) != "d" {
		t.Errorf("entries after eviction = [%q..%q], want oldest evicted", h.Entry(0), h.Entry(2))
	}
}

func TestHistory_DuplicatesAllowed(t *testing.T) {
	h := NewHistory(0)
	h.Append("same")
	h.Append("same")

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want duplicates stored", h.Len())
	}
}

func TestHistory_EmptyNavigation(t *testing.T) {
	h := NewHistory(0)

	if _, ok := h.Prev("live"); ok {
		t.Error("Prev() on empty history should report no entry")
	}
	if _, ok := h.Oldest("live"); ok {
		t.Error("Oldest() on empty history should report no entry")
	}
	if _, ok := h.Next(); ok {
		t.Error("Next() at live position should report no entry")
	}
	if _, ok := h.Newest(); ok {
		t.Error("Newest() at live position should report no entry")
	}
}
