// Package menu models a context menu: an ordered list of entries that can
// be hidden, shown or removed by id, opened on a target and driven from
// the keyboard.
package menu

import (
	"github.com/google/uuid"

	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/table"
)

// SeparatorID added through Add inserts a separator.
const SeparatorID = "__sep__"

// TargetKind says what a menu was opened on.
type TargetKind uint8

const (
	// TargetGeneric is anything outside the bound table's cells.
	TargetGeneric TargetKind = iota

	// TargetCell is a cell of the bound table.
	TargetCell
)

// Target is what the menu was opened on, passed to entry handlers.
type Target struct {
	Kind TargetKind
	Cell table.Coord

	// X and Y are the screen position of the opening click.
	X, Y int
}

// CellTarget returns a target for the cell at c.
func CellTarget(c table.Coord, x, y int) Target {
	return Target{Kind: TargetCell, Cell: c, X: x, Y: y}
}

// Handler runs when an entry is activated.
type Handler func(Target)

// Entry is a single menu line.
type Entry struct {
	ID      string
	Icon    string
	Label   string
	Hidden  bool
	Handler Handler

	separator bool
}

// IsSeparator reports whether the entry is a separator line.
func (e *Entry) IsSeparator() bool { return e.separator }

// Menu is a context menu.
type Menu struct {
	id      string
	entries []*Entry

	open   bool
	target Target
	focus  int
}

// New creates an empty, closed menu.
func New() *Menu {
	return &Menu{id: "menu-" + uuid.NewString(), focus: -1}
}

// ID returns the menu id.
func (m *Menu) ID() string { return m.id }

// Add appends an entry. An id of SeparatorID appends a separator.
func (m *Menu) Add(id, icon, label string, h Handler) {
	if id == SeparatorID {
		m.AddSeparator()
		return
	}
	m.entries = append(m.entries, &Entry{ID: id, Icon: icon, Label: label, Handler: h})
}

// AddSeparator appends a separator.
func (m *Menu) AddSeparator() {
	m.entries = append(m.entries, &Entry{separator: true})
}

// AddMenu appends entries in order.
func (m *Menu) AddMenu(entries []Entry) {
	for _, e := range entries {
		m.Add(e.ID, e.Icon, e.Label, e.Handler)
	}
}

// Entry returns the entry with id, or nil.
func (m *Menu) Entry(id string) *Entry {
	for _, e := range m.entries {
		if !e.separator && e.ID == id {
			return e
		}
	}
	return nil
}

// Remove deletes the entry with id.
func (m *Menu) Remove(id string) {
	for i, e := range m.entries {
		if !e.separator && e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			m.focus = -1
			if m.open {
				m.focusFirst()
			}
			return
		}
	}
}

// Hide hides the entry with id.
func (m *Menu) Hide(id string) {
	if e := m.Entry(id); e != nil {
		e.Hidden = true
	}
}

// Show unhides the entry with id.
func (m *Menu) Show(id string) {
	if e := m.Entry(id); e != nil {
		e.Hidden = false
	}
}

// Entries returns all entries including hidden ones and separators.
func (m *Menu) Entries() []*Entry {
	return m.entries
}

// Visible returns the focusable entries: not hidden, not separators.
func (m *Menu) Visible() []*Entry {
	var out []*Entry
	for _, e := range m.entries {
		if !e.separator && !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// Open shows the menu on target and focuses the first visible entry.
func (m *Menu) Open(target Target) {
	m.target = target
	m.open = true
	m.focusFirst()
}

func (m *Menu) focusFirst() {
	m.focus = -1
	if len(m.Visible()) > 0 {
		m.focus = 0
	}
}

// Close hides the menu.
func (m *Menu) Close() {
	m.open = false
	m.target = Target{}
	m.focus = -1
}

// IsOpen reports whether the menu is showing.
func (m *Menu) IsOpen() bool { return m.open }

// Target returns the target of the open menu.
func (m *Menu) Target() Target { return m.target }

// Focused returns the focused entry, or nil.
func (m *Menu) Focused() *Entry {
	vis := m.Visible()
	if m.focus < 0 || m.focus >= len(vis) {
		return nil
	}
	return vis[m.focus]
}

// Activate runs the handler of the entry with id and closes the menu.
func (m *Menu) Activate(id string) bool {
	e := m.Entry(id)
	if e == nil || e.Hidden || !m.open {
		return false
	}
	target := m.target
	m.Close()
	if e.Handler != nil {
		e.Handler(target)
	}
	return true
}

// HandleKey drives the open menu: Up and Down move the focus with wrap
// around over visible entries, Enter or Space activates, Escape closes.
func (m *Menu) HandleKey(ev key.Event) bool {
	if !m.open {
		return false
	}
	vis := m.Visible()
	switch {
	case ev.Key == key.KeyEscape:
		m.Close()
	case len(vis) == 0:
		return false
	case ev.Key == key.KeyDown:
		m.focus = (m.focus + 1) % len(vis)
	case ev.Key == key.KeyUp:
		m.focus = (m.focus - 1 + len(vis)) % len(vis)
	case ev.Key == key.KeyEnter, ev.IsRune() && ev.Rune == ' ':
		if e := m.Focused(); e != nil {
			m.Activate(e.ID)
		}
	default:
		return false
	}
	return true
}
