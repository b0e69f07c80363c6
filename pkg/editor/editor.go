// Package editor provides the interactive command-line state machine:
// an editable buffer with cursor and insert/overwrite modes, and a
// bounded history of previously submitted lines.
package editor

import (
	"github.com/gdamore/tcell/v2"
)

// ActionKind identifies what a key event produced.
type ActionKind int

const (
	// ActionNone means the event mutated (or deliberately did not
	// mutate) the buffer and nothing needs transmitting.
	ActionNone ActionKind = iota
	// ActionSubmit carries a finalized line for transmission.
	ActionSubmit
	// ActionInterrupt requests the debugger break sequence, leaving
	// the buffer untouched.
	ActionInterrupt
)

// Action is the outcome of processing one key event.
type Action struct {
	Kind ActionKind
	Line string // set for ActionSubmit
}

// LineEditor maintains the in-progress command line. It has no failure
// modes: every key event has a defined effect, including no-ops at the
// buffer boundaries.
type LineEditor struct {
	buffer    []rune
	cursor    int
	overwrite bool
	history   *History
}

// NewLineEditor creates an editor with an empty buffer, insert mode,
// and a history bounded to historyCap entries (DefaultHistoryCap when
// historyCap <= 0).
func NewLineEditor(historyCap int) *LineEditor {
	return &LineEditor{
		history: NewHistory(historyCap),
	}
}

// Line returns the current buffer contents.
func (le *LineEditor) Line() string {
	return string(le.buffer)
}

// Cursor returns the cursor offset in runes, 0..len inclusive.
func (le *LineEditor) Cursor() int {
	return le.cursor
}

// TextBeforeCursor returns the buffer contents left of the cursor.
// Display layers use it to place the cursor by cell width rather than
// rune count.
func (le *LineEditor) TextBeforeCursor() string {
	return string(le.buffer[:le.cursor])
}

// Overwrite reports whether the editor is in overwrite mode.
func (le *LineEditor) Overwrite() bool {
	return le.overwrite
}

// History exposes the command history, primarily for tests and status
// rendering.
func (le *LineEditor) History() *History {
	return le.history
}

// ProcessKeyEvent applies one key event to the editor state and
// reports the resulting action.
func (le *LineEditor) ProcessKeyEvent(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyLeft:
		if le.cursor > 0 {
			le.cursor--
		}
	case tcell.KeyRight:
		if le.cursor < len(le.buffer) {
			le.cursor++
		}
	case tcell.KeyHome:
		le.cursor = 0
	case tcell.KeyEnd:
		le.cursor = len(le.buffer)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if le.cursor > 0 {
			le.buffer = append(le.buffer[:le.cursor-1], le.buffer[le.cursor:]...)
			le.cursor--
		}
	case tcell.KeyDelete:
		if le.cursor < len(le.buffer) {
			le.buffer = append(le.buffer[:le.cursor], le.buffer[le.cursor+1:]...)
		}
	case tcell.KeyInsert:
		le.overwrite = !le.overwrite
	case tcell.KeyUp:
		if line, ok := le.history.Prev(le.Line()); ok {
			le.load(line)
		}
	case tcell.KeyDown:
		if line, ok := le.history.Next(); ok {
			le.load(line)
		}
	case tcell.KeyPgUp:
		if line, ok := le.history.Oldest(le.Line()); ok {
			le.load(line)
		}
	case tcell.KeyPgDn:
		if line, ok := le.history.Newest(); ok {
			le.load(line)
		}
	case tcell.KeyEnter:
		return le.finalize()
	case tcell.KeyCtrlC:
		return Action{Kind: ActionInterrupt}
	case tcell.KeyRune:
		le.insertRune(ev.Rune())
	}

	return Action{Kind: ActionNone}
}

// insertRune splices or overwrites one printable character at the
// cursor.
func (le *LineEditor) insertRune(r rune) {
	if le.overwrite && le.cursor < len(le.buffer) {
		le.buffer[le.cursor] = r
	} else {
		le.buffer = append(le.buffer, 0)
		copy(le.buffer[le.cursor+1:], le.buffer[le.cursor:])
		le.buffer[le.cursor] = r
	}
	le.cursor++
}

// finalize submits the buffer. Only a buffer with at least one
// character is submitted; an all-whitespace buffer goes out verbatim.
// The submitted text (including any edits made to a recalled history
// entry) is appended to history, the buffer is cleared, and the
// history cursor returns to the live position.
func (le *LineEditor) finalize() Action {
	if len(le.buffer) == 0 {
		le.history.ResetCursor()
		return Action{Kind: ActionNone}
	}

	line := string(le.buffer)
	le.history.Append(line)
	le.buffer = le.buffer[:0]
	le.cursor = 0

	return Action{Kind: ActionSubmit, Line: line}
}

// load replaces the live buffer with a recalled history line and puts
// the cursor at its end.
func (le *LineEditor) load(line string) {
	le.buffer = []rune(line)
	le.cursor = len(le.buffer)
}
