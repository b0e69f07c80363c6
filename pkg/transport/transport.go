// Package transport provides the TCP connection to the Roku debugger
package transport

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// etx is the interrupt byte the debugger interprets as Ctrl/C, breaking
// script execution into the debugger prompt.
const etx = 0x03

// Config defines the configuration for the debugger connection
type Config struct {
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	DialTimeout time.Duration `json:"dial_timeout"`
}

// Validate checks if the transport configuration is valid
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.DialTimeout < 0 {
		return fmt.Errorf("dial timeout cannot be negative")
	}

	return nil
}

// Addr returns the host:port form of the target address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultConfig returns a default transport configuration.
// The defaults match the Roku's standard BrightScript debugger port.
func DefaultConfig() Config {
	return Config{
		Host:        "192.168.0.6",
		Port:        8085,
		DialTimeout: time.Second * 10,
	}
}

// Transport interface defines the contract for debugger connection operations
type Transport interface {
	Connect(config Config) error
	Close() error
	Read(buffer []byte) (int, error)
	Write(data []byte) (int, error)
	SendLine(line string) error
	Interrupt() error
	IsOpen() bool
	State() ConnectionState
	RemoteAddr() string
	GetConfig() Config
}

// TCPTransport implements Transport over a raw TCP socket.
//
// The connection is a single-owner resource: there is no retry and no
// reconnect. A dial failure or a mid-session I/O error is fatal to the
// debugger session, which has no resumption semantics.
type TCPTransport struct {
	conn   net.Conn
	config Config
	mu     sync.Mutex
	state  ConnectionState
}

// NewTCPTransport creates a new TCP transport instance
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{
		state: StateDisconnected,
	}
}

// Connect establishes the TCP connection to the debugger
func (tp *TCPTransport) Connect(config Config) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.state == StateConnected {
		return fmt.Errorf("transport is already connected")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tp.state = StateConnecting
	tp.config = config

	conn, err := net.DialTimeout("tcp", config.Addr(), config.DialTimeout)
	if err != nil {
		tp.state = StateError
		return NewTransportError("connect", config.Addr(), err)
	}

	tp.conn = conn
	tp.state = StateConnected

	return nil
}

// Close closes the connection. Closing unblocks any in-flight Read,
// which is how the session's inbound loop is released on shutdown.
// Close is idempotent.
func (tp *TCPTransport) Close() error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.conn == nil {
		tp.state = StateDisconnected
		return nil
	}

	err := tp.conn.Close()
	tp.conn = nil
	tp.state = StateDisconnected

	if err != nil {
		return NewTransportError("close", tp.config.Addr(), err)
	}

	return nil
}

// Read reads a chunk of debugger output. It blocks until data is
// available or the connection closes; a closed connection surfaces as
// an error and terminates the inbound sequence.
func (tp *TCPTransport) Read(buffer []byte) (int, error) {
	conn := tp.connHandle()
	if conn == nil {
		return 0, fmt.Errorf("transport is not connected")
	}

	n, err := conn.Read(buffer)
	if err != nil {
		return n, NewTransportError("read", tp.config.Addr(), err)
	}

	return n, nil
}

// Write writes raw bytes to the debugger, looping until the whole
// buffer is on the wire
func (tp *TCPTransport) Write(data []byte) (int, error) {
	conn := tp.connHandle()
	if conn == nil {
		return 0, fmt.Errorf("transport is not connected")
	}

	total := 0
	for total < len(data) {
		n, err := conn.Write(data[total:])
		total += n
		if err != nil {
			return total, NewTransportError("write", tp.config.Addr(), err)
		}
	}

	return total, nil
}

// SendLine transmits one debugger command. The debugger expects each
// command terminated by CR LF.
func (tp *TCPTransport) SendLine(line string) error {
	_, err := tp.Write(append([]byte(line), '\r', '\n'))
	return err
}

// Interrupt sends the debugger's break sequence (a single ETX byte),
// out of band with respect to command lines
func (tp *TCPTransport) Interrupt() error {
	_, err := tp.Write([]byte{etx})
	return err
}

// IsOpen returns true if the transport is connected
func (tp *TCPTransport) IsOpen() bool {
	return tp.State() == StateConnected
}

// State returns the current connection state
func (tp *TCPTransport) State() ConnectionState {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	return tp.state
}

// RemoteAddr returns the address of the connected peer, or the
// configured address if the connection is down
func (tp *TCPTransport) RemoteAddr() string {
	conn := tp.connHandle()
	if conn != nil {
		return conn.RemoteAddr().String()
	}
	return tp.config.Addr()
}

// GetConfig returns the current transport configuration
func (tp *TCPTransport) GetConfig() Config {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	return tp.config
}

// connHandle snapshots the connection under the lock so Read and Write
// can block without holding it
func (tp *TCPTransport) connHandle() net.Conn {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.state != StateConnected {
		return nil
	}
	return tp.conn
}

// NewTransport creates a new transport instance (convenience function)
func NewTransport() Transport {
	return NewTCPTransport()
}

// TransportError represents a connection-specific error
type TransportError struct {
	Op    string
	Addr  string
	Cause error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport %s operation failed on %s: %v", e.Op, e.Addr, e.Cause)
	}
	return fmt.Sprintf("transport %s operation failed on %s", e.Op, e.Addr)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a new transport error
func NewTransportError(op, addr string, cause error) *TransportError {
	return &TransportError{
		Op:    op,
		Addr:  addr,
		Cause: cause,
	}
}

// ConnectionState represents the state of the debugger connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateError
)

// String returns the string representation of ConnectionState
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
