// Package session wires the transport, decoder, output surface and
// line editor into a running debugger session: one goroutine drains
// the inbound network flow onto the output surface while the primary
// terminal runs the blocking line-editor loop.
package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"rokuterm/pkg/decode"
	"rokuterm/pkg/editor"
	"rokuterm/pkg/surface"
	"rokuterm/pkg/transport"
)

const prompt = "> "

// Config carries the resolved session parameters. Defaults (host,
// port) belong to the CLI layer; the core receives them explicitly.
type Config struct {
	Transport  transport.Config
	Surface    surface.Surface
	Transcript io.Writer // optional; receives decoded text and sent commands
	HistoryCap int       // 0 means editor.DefaultHistoryCap
	DebugLog   io.Writer // optional timestamped debug trace
}

// Stats records per-session traffic counters.
type Stats struct {
	BytesSent int64
	BytesRecv int64
	StartTime time.Time
	EndTime   time.Time
	mu        sync.Mutex
}

func (s *Stats) addSent(n int) {
	s.mu.Lock()
	s.BytesSent += int64(n)
	s.mu.Unlock()
}

func (s *Stats) addRecv(n int) {
	s.mu.Lock()
	s.BytesRecv += int64(n)
	s.mu.Unlock()
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() (sent, recv int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.BytesSent, s.BytesRecv
}

// Duration returns the session length.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Orchestrator runs one debugger session. The inbound flow (transport
// → decoder → surface) and the outbound flow (keystrokes → editor →
// transport) execute concurrently; the transport send path has a
// single logical writer, the editor loop.
type Orchestrator struct {
	config  Config
	tp      transport.Transport
	decoder *decode.Decoder
	ed      *editor.LineEditor
	screen  tcell.Screen
	stats   Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// fatalErr holds the first fatal transport error; returned from
	// Run after teardown.
	fatalMu  sync.Mutex
	fatalErr error

	transcriptMu  sync.Mutex
	transcript    io.Writer
	transcriptBad bool
}

// NewOrchestrator creates a session around the given transport. Pass
// nil to use a fresh TCP transport.
func NewOrchestrator(config Config, tp transport.Transport) (*Orchestrator, error) {
	if config.Surface == nil {
		return nil, fmt.Errorf("session requires an output surface")
	}
	if err := config.Transport.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}

	if tp == nil {
		tp = transport.NewTransport()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		config:     config,
		tp:         tp,
		decoder:    decode.NewDecoder(),
		ed:         editor.NewLineEditor(config.HistoryCap),
		transcript: config.Transcript,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SetScreen injects the primary input screen. When unset, Run creates
// and initializes a terminal screen.
func (o *Orchestrator) SetScreen(screen tcell.Screen) {
	o.screen = screen
}

// Stats exposes the traffic counters.
func (o *Orchestrator) Stats() *Stats {
	return &o.stats
}

// Run executes the session until the user quits, input terminates, or
// a fatal transport error tears both flows down. The returned error is
// the fatal failure, or nil on a clean quit.
func (o *Orchestrator) Run() error {
	o.stats.StartTime = time.Now()
	defer func() { o.stats.EndTime = time.Now() }()

	if err := o.tp.Connect(o.config.Transport); err != nil {
		return err
	}
	defer o.tp.Close()

	if err := o.config.Surface.Start(); err != nil {
		o.tp.Close()
		return fmt.Errorf("failed to start output surface: %w", err)
	}
	defer o.config.Surface.Close()

	if o.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize screen: %w", err)
		}
		o.screen = screen
		defer screen.Fini()
	}

	o.logDebug("session start: %s", o.config.Transport.Addr())

	// Inbound flow: socket → decoder → output surface (+ transcript).
	o.wg.Add(1)
	go o.readLoop()

	// Outbound flow: blocking editor loop on the primary surface.
	o.editorLoop()

	// Closing the transport unblocks the reader's pending Read so it
	// is never left blocked on receive.
	o.cancel()
	o.tp.Close()
	o.wg.Wait()

	o.logDebug("session end")

	return o.fatal()
}

// readLoop drains the inbound flow. It is driven purely by data
// availability on the socket and never blocks on the input surface.
func (o *Orchestrator) readLoop() {
	defer o.wg.Done()

	buffer := make([]byte, 4096)
	for {
		n, err := o.tp.Read(buffer)
		if n > 0 {
			o.stats.addRecv(n)
			o.emit(o.decoder.Decode(buffer[:n]))
		}
		if err != nil {
			if tail := o.decoder.Flush(); tail != "" {
				o.emit(tail)
			}
			// A close requested by our own teardown is not a fault.
			if o.ctx.Err() == nil {
				o.setFatal(err)
				o.cancel()
			}
			return
		}
	}
}

// emit appends decoded text to the output surface and mirrors it to
// the transcript sink. Losing the output surface (the viewer window
// was closed) ends the session: both flows are torn down the same way
// as on a transport failure.
func (o *Orchestrator) emit(text string) {
	if text == "" {
		return
	}
	if err := o.config.Surface.Append(text); err != nil {
		if o.ctx.Err() == nil {
			o.setFatal(fmt.Errorf("output surface lost: %w", err))
			o.cancel()
			o.tp.Close()
		}
		return
	}
	o.writeTranscript(text)
}

// writeTranscript mirrors text to the transcript sink. A write failure
// disables the sink for the rest of the session; it never kills the
// session itself.
func (o *Orchestrator) writeTranscript(text string) {
	o.transcriptMu.Lock()
	defer o.transcriptMu.Unlock()

	if o.transcript == nil || o.transcriptBad {
		return
	}
	if _, err := io.WriteString(o.transcript, text); err != nil {
		o.transcriptBad = true
		o.logDebug("transcript disabled: %v", err)
	}
}

// editorLoop runs the blocking key-event loop on the primary surface
// until quit, input termination, or cancellation.
func (o *Orchestrator) editorLoop() {
	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := o.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-o.ctx.Done():
				return
			}
		}
	}()

	o.drawInput()

	for {
		select {
		case <-o.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				// Input terminated (screen shut down underneath us).
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				o.screen.Sync()
				o.drawInput()
			case *tcell.EventKey:
				if o.handleKey(ev) {
					return
				}
				o.drawInput()
			}
		}
	}
}

// handleKey feeds one key event to the line editor and acts on the
// result. Returns true when the session should end.
func (o *Orchestrator) handleKey(ev *tcell.EventKey) bool {
	action := o.ed.ProcessKeyEvent(ev)

	switch action.Kind {
	case editor.ActionSubmit:
		// 'quit' ends the session locally; the literal word is never
		// transmitted to the debugger. Only trailing whitespace is
		// ignored, so an indented 'quit' still goes to the remote.
		if strings.EqualFold(strings.TrimRightFunc(action.Line, unicode.IsSpace), "quit") {
			o.logDebug("quit command")
			return true
		}
		if err := o.tp.SendLine(action.Line); err != nil {
			o.setFatal(err)
			return true
		}
		o.stats.addSent(len(action.Line) + 2)
		o.writeTranscript(action.Line + "\n")
	case editor.ActionInterrupt:
		o.logDebug("interrupt")
		if err := o.tp.Interrupt(); err != nil {
			o.setFatal(err)
			return true
		}
		o.stats.addSent(1)
	}

	return false
}

// drawInput renders the prompt, the live buffer, the cursor, and a
// one-line status bar on the primary surface.
func (o *Orchestrator) drawInput() {
	width, height := o.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	o.screen.Clear()
	style := tcell.StyleDefault

	line := prompt + o.ed.Line()
	x := 0
	for _, r := range line {
		if x >= width {
			break
		}
		o.screen.SetContent(x, 0, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	// Cursor placement counts display cells, not runes; wide runes in
	// the buffer occupy two columns.
	cursorX := runewidth.StringWidth(prompt) + runewidth.StringWidth(o.ed.TextBeforeCursor())
	o.screen.ShowCursor(cursorX, 0)

	if height > 1 {
		mode := "INS"
		if o.ed.Overwrite() {
			mode = "OVR"
		}
		status := fmt.Sprintf("%s  %s  %s  type 'quit' to exit",
			o.config.Transport.Addr(), o.tp.State(), mode)
		x = 0
		for _, r := range status {
			if x >= width {
				break
			}
			o.screen.SetContent(x, height-1, r, nil, style.Dim(true))
			x += runewidth.RuneWidth(r)
		}
	}

	o.screen.Show()
}

func (o *Orchestrator) setFatal(err error) {
	o.fatalMu.Lock()
	defer o.fatalMu.Unlock()

	if o.fatalErr == nil {
		o.fatalErr = err
		o.logDebug("fatal: %v", err)
	}
}

func (o *Orchestrator) fatal() error {
	o.fatalMu.Lock()
	defer o.fatalMu.Unlock()
	return o.fatalErr
}

// logDebug writes a timestamped trace line when a debug sink is set.
func (o *Orchestrator) logDebug(format string, args ...interface{}) {
	if o.config.DebugLog == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.config.DebugLog, "[%s] %s\n", time.Now().Format("15:04:05.000"), msg)
}
