// Package backend provides the terminal abstraction the grid view draws on.
package backend

import (
	"sync"

	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/renderer/core"
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize

	// EventInterrupt wakes PollEvent without input, see Interrupt.
	EventInterrupt

	// EventClosed is returned once the backend has shut down.
	EventClosed
)

// MouseButton is the button of a mouse press.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key is set for EventKey.
	Key key.Event

	// Mouse press position and button.
	X, Y   int
	Button MouseButton

	// Resize dimensions.
	Width, Height int
}

// Backend is a drawing surface with an input event source.
type Backend interface {
	// Init prepares the backend. It must be called before anything else.
	Init() error

	// Shutdown restores the terminal. PollEvent then returns EventClosed.
	Shutdown()

	Size() (width, height int)

	// SetCell sets one cell. Positions outside the screen are ignored.
	SetCell(x, y int, cell core.Cell)

	Fill(rect core.ScreenRect, cell core.Cell)
	Clear()

	// Show flushes drawing to the display.
	Show()

	ShowCursor(x, y int)
	HideCursor()

	// PollEvent blocks until the next event.
	PollEvent() Event

	// Interrupt makes a blocked PollEvent return EventInterrupt. It is
	// safe to call from any goroutine.
	Interrupt()

	Beep()
}

// NullBackend is an in-memory backend for tests.
type NullBackend struct {
	width, height int
	cells         [][]core.Cell
	cursorX       int
	cursorY       int
	cursorVisible bool

	mu     sync.Mutex
	closed bool
	events chan Event
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.allocate()
	return nil
}

func (b *NullBackend) allocate() {
	b.cells = make([][]core.Cell, b.height)
	for i := range b.cells {
		b.cells[i] = make([]core.Cell, b.width)
		for j := range b.cells[i] {
			b.cells[i][j] = core.EmptyCell()
		}
	}
}

func (b *NullBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

// GetCell returns the cell at x, y, or an empty cell off screen.
func (b *NullBackend) GetCell(x, y int) core.Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	for y := max(rect.Top, 0); y < rect.Bottom && y < b.height; y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < b.width; x++ {
			b.cells[y][x] = cell
		}
	}
}

func (b *NullBackend) Clear() {
	b.Fill(core.ScreenRect{Right: b.width, Bottom: b.height}, core.EmptyCell())
}

func (b *NullBackend) Show() {}

func (b *NullBackend) ShowCursor(x, y int) {
	b.cursorX, b.cursorY = x, y
	b.cursorVisible = true
}

func (b *NullBackend) HideCursor() {
	b.cursorVisible = false
}

func (b *NullBackend) PollEvent() Event {
	ev, ok := <-b.events
	if !ok {
		return Event{Type: EventClosed}
	}
	return ev
}

// PostEvent queues ev for PollEvent. Events are dropped when the queue
// is full or the backend is shut down.
func (b *NullBackend) PostEvent(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- ev:
	default:
	}
}

func (b *NullBackend) Interrupt() {
	b.PostEvent(Event{Type: EventInterrupt})
}

func (b *NullBackend) Beep() {}

// CursorPosition returns the cursor state.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	return b.cursorX, b.cursorY, b.cursorVisible
}

// Line returns the runes of screen row y as a string, skipping the
// trailing halves of wide runes.
func (b *NullBackend) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	runes := make([]rune, 0, b.width)
	for _, c := range b.cells[y] {
		if c.Width == 0 && c.Rune == 0 {
			continue
		}
		runes = append(runes, c.Rune)
	}
	return string(runes)
}

// Resize changes the screen size and posts a resize event.
func (b *NullBackend) Resize(width, height int) {
	b.width, b.height = width, height
	b.allocate()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
