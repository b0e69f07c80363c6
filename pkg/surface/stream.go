package surface

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// Listener serves decoded text to an output viewer process over a
// loopback TCP socket. The session process listens, launches the
// viewer, and streams every decoded text unit to the accepted
// connection.
type Listener struct {
	ln net.Listener
}

// NewListener binds a random loopback port for a viewer to attach to.
func NewListener() (*Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind viewer listener: %w", err)
	}
	return &Listener{ln: ln}, nil
}

// Addr returns the address the viewer must attach to.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// AwaitViewer accepts the viewer's connection, giving up after the
// timeout so a viewer that never started does not hang the session.
func (l *Listener) AwaitViewer(timeout time.Duration) (*StreamSurface, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := l.ln.Accept()
		ch <- result{conn, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("failed to accept viewer connection: %w", res.err)
		}
		return &StreamSurface{conn: res.conn}, nil
	case <-time.After(timeout):
		l.ln.Close()
		return nil, fmt.Errorf("output window did not attach within %v", timeout)
	}
}

// Close releases the listener socket.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// StreamSurface writes decoded text to the attached viewer connection.
// Closing the surface closes the stream, which the viewer renders as
// end of session.
type StreamSurface struct {
	conn   net.Conn
	mu     sync.Mutex
	closed bool
}

// AttachStreamSurface wraps an already-established viewer connection.
func AttachStreamSurface(conn net.Conn) *StreamSurface {
	return &StreamSurface{conn: conn}
}

// Start is a no-op; the connection is already established.
func (ss *StreamSurface) Start() error {
	return nil
}

// Append sends the text to the viewer.
func (ss *StreamSurface) Append(text string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.closed {
		return fmt.Errorf("surface is closed")
	}

	if _, err := io.WriteString(ss.conn, text); err != nil {
		return fmt.Errorf("failed to write to output window: %w", err)
	}
	return nil
}

// Close shuts the stream down. Idempotent.
func (ss *StreamSurface) Close() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.closed {
		return nil
	}
	ss.closed = true
	return ss.conn.Close()
}
