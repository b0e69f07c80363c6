package surface

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	// DefaultScrollback bounds the viewer's line buffer. The debugger
	// can stream indefinitely; the display keeps the most recent lines.
	DefaultScrollback = 10000

	tabStop = 8
)

// ScreenSurface is a tcell-backed scrollback viewer. Appends are
// funneled through a channel consumed by a single render goroutine, so
// the inbound network flow never touches the screen directly.
type ScreenSurface struct {
	screen     tcell.Screen
	ownsScreen bool

	appendCh chan string
	eventCh  chan tcell.Event
	done     chan struct{}
	wg       sync.WaitGroup
	closeMu  sync.Mutex
	closed   bool

	// Render state, owned by the run goroutine.
	lines      []string
	current    []rune
	col        int
	scrollback int
	offset     int // lines scrolled up from the bottom
}

// NewScreenSurface creates a viewer on a freshly initialized terminal
// screen.
func NewScreenSurface() *ScreenSurface {
	return &ScreenSurface{
		ownsScreen: true,
		appendCh:   make(chan string, 64),
		eventCh:    make(chan tcell.Event, 8),
		done:       make(chan struct{}),
		scrollback: DefaultScrollback,
	}
}

// NewScreenSurfaceFor creates a viewer on an existing screen. The
// caller keeps ownership of the screen's lifecycle; used by tests with
// a simulation screen.
func NewScreenSurfaceFor(screen tcell.Screen) *ScreenSurface {
	s := NewScreenSurface()
	s.screen = screen
	s.ownsScreen = false
	return s
}

// Start initializes the screen and starts the render and event loops.
func (s *ScreenSurface) Start() error {
	if s.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize screen: %w", err)
		}
		s.screen = screen
	}

	s.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))
	s.screen.Clear()

	s.wg.Add(2)
	go s.run()
	go s.pumpEvents()

	return nil
}

// Append queues decoded text for rendering. Returns an error once the
// surface is closed.
func (s *ScreenSurface) Append(text string) error {
	select {
	case s.appendCh <- text:
		return nil
	case <-s.done:
		return fmt.Errorf("surface is closed")
	}
}

// Done is closed when the viewer stops, either by Close or by the user
// quitting the output window.
func (s *ScreenSurface) Done() <-chan struct{} {
	return s.done
}

// Close stops the loops and releases the screen. Idempotent.
func (s *ScreenSurface) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.closeMu.Unlock()

	// Wake up PollEvent so the pump can exit.
	s.screen.PostEvent(tcell.NewEventInterrupt(nil))
	s.wg.Wait()

	if s.ownsScreen {
		s.screen.Fini()
	}
	return nil
}

// run is the single writer of all render state. It consumes queued
// appends and forwarded screen events, redrawing after each batch.
func (s *ScreenSurface) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case text := <-s.appendCh:
			s.ingest(text)
			// Drain whatever else is queued before redrawing.
			for {
				select {
				case more := <-s.appendCh:
					s.ingest(more)
					continue
				default:
				}
				break
			}
			s.draw()
		case ev := <-s.eventCh:
			s.handleEvent(ev)
		}
	}
}

// pumpEvents forwards screen events to the render goroutine. It owns
// the blocking PollEvent call, which Close unblocks with an interrupt
// event.
func (s *ScreenSurface) pumpEvents() {
	defer s.wg.Done()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}

		if _, ok := ev.(*tcell.EventInterrupt); ok {
			return
		}

		select {
		case s.eventCh <- ev:
		case <-s.done:
			return
		}
	}
}

// handleEvent reacts to resize and viewer keys: scroll keys adjust the
// viewport, Ctrl-Q and Escape stop the viewer.
func (s *ScreenSurface) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.screen.Sync()
		s.draw()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlQ, tcell.KeyEscape:
			go s.Close()
		case tcell.KeyPgUp:
			s.scroll(s.pageSize())
		case tcell.KeyPgDn:
			s.scroll(-s.pageSize())
		case tcell.KeyUp:
			s.scroll(1)
		case tcell.KeyDown:
			s.scroll(-1)
		case tcell.KeyEnd:
			s.scroll(-s.offset)
		}
	}
}

func (s *ScreenSurface) pageSize() int {
	_, h := s.screen.Size()
	if h < 2 {
		return 1
	}
	return h - 1
}

func (s *ScreenSurface) scroll(delta int) {
	s.offset += delta
	max := len(s.lines)
	if s.offset > max {
		s.offset = max
	}
	if s.offset < 0 {
		s.offset = 0
	}
	s.draw()
}

// ingest folds decoded text into the line buffer. Only LF, CR and TAB
// need interpretation: everything else arriving from the decoder is
// printable. A lone CR is dropped; CR LF and LF both break the line.
func (s *ScreenSurface) ingest(text string) {
	for _, r := range text {
		switch r {
		case '\n':
			s.pushLine()
		case '\r':
			// handled with the LF that follows it
		case '\t':
			pad := tabStop - s.col%tabStop
			for i := 0; i < pad; i++ {
				s.current = append(s.current, ' ')
			}
			s.col += pad
		default:
			s.current = append(s.current, r)
			s.col += runewidth.RuneWidth(r)
		}
	}
}

func (s *ScreenSurface) pushLine() {
	s.lines = append(s.lines, string(s.current))
	s.current = s.current[:0]
	s.col = 0

	if len(s.lines) > s.scrollback {
		s.lines = s.lines[len(s.lines)-s.scrollback:]
	}
	// Keep the viewport pinned while scrolled up.
	if s.offset > 0 && s.offset < len(s.lines) {
		s.offset++
	}
}

// Lines returns a snapshot of completed scrollback lines plus the
// in-progress line. Intended for tests; the render goroutine must be
// idle when called.
func (s *ScreenSurface) Lines() []string {
	out := append([]string(nil), s.lines...)
	if len(s.current) > 0 {
		out = append(out, string(s.current))
	}
	return out
}

// draw renders the tail of the scrollback, honoring the scroll offset.
func (s *ScreenSurface) draw() {
	width, height := s.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	s.screen.Clear()

	visible := make([]string, 0, height)
	total := append(append([]string(nil), s.lines...), string(s.current))

	end := len(total) - s.offset
	if end < 0 {
		end = 0
	}
	start := end - height
	if start < 0 {
		start = 0
	}
	visible = append(visible, total[start:end]...)

	style := tcell.StyleDefault
	for y, line := range visible {
		x := 0
		for _, r := range line {
			if x >= width {
				break
			}
			s.screen.SetContent(x, y, r, nil, style)
			x += runewidth.RuneWidth(r)
		}
	}

	s.screen.Show()
}
