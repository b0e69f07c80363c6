// Package surface provides the output surfaces that display decoded
// debugger text: a tcell scrollback viewer for a dedicated output
// window, a plain io.Writer surface, and the loopback stream that
// carries decoded text from the session process to a viewer process.
package surface

import (
	"fmt"
	"io"
	"sync"
)

// Surface is an append-only, scrolling text sink. Decoded text units
// are appended in order; the surface renders them on whatever display
// it fronts. Append must be called by a single logical writer.
type Surface interface {
	Start() error
	Append(text string) error
	Close() error
}

// WriterSurface renders decoded text to an io.Writer. Used for
// windowless sessions and tests.
type WriterSurface struct {
	w      io.Writer
	mu     sync.Mutex
	closed bool
}

// NewWriterSurface creates a surface backed by w.
func NewWriterSurface(w io.Writer) *WriterSurface {
	return &WriterSurface{w: w}
}

// Start is a no-op; the writer needs no setup.
func (ws *WriterSurface) Start() error {
	return nil
}

// Append writes the text verbatim.
func (ws *WriterSurface) Append(text string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return fmt.Errorf("surface is closed")
	}

	if _, err := io.WriteString(ws.w, text); err != nil {
		return fmt.Errorf("failed to write to surface: %w", err)
	}
	return nil
}

// Close marks the surface closed. The underlying writer is not closed;
// its lifetime belongs to the caller.
func (ws *WriterSurface) Close() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.closed = true
	return nil
}
