// Package renderer draws a bound table and its popups on a terminal
// backend and maps screen positions back to what was drawn there.
//
// Every table row takes one screen line. Header rows stay at the top,
// body rows scroll so that the focused row is visible, and the last line
// is the status line. The menu, the calendar and dialogs are drawn over
// the table in that order.
package renderer

import (
	"sync"

	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/dialog"
	"github.com/dshills/gridstorm/internal/editor"
	"github.com/dshills/gridstorm/internal/menu"
	"github.com/dshills/gridstorm/internal/renderer/backend"
	"github.com/dshills/gridstorm/internal/renderer/core"
	"github.com/dshills/gridstorm/internal/table"
)

// Options configures the renderer.
type Options struct {
	// MaxColWidth caps the width of a column.
	MaxColWidth int

	// MinColWidth is the narrowest a column is drawn.
	MinColWidth int

	Theme Theme
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		MaxColWidth: 24,
		MinColWidth: 3,
		Theme:       DefaultTheme(),
	}
}

// Theme holds the styles the renderer draws with.
type Theme struct {
	Header    core.Style
	Cell      core.Style
	Rule      core.Style
	Cursor    core.Style
	Editing   core.Style
	Pending   core.Style
	Error     core.Style
	Menu      core.Style
	MenuFocus core.Style
	Dialog    core.Style
	Status    core.Style
	DayOther  core.Style
	DayCursor core.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	base := core.DefaultStyle()
	return Theme{
		Header:    base.Bold(),
		Cell:      base,
		Rule:      base.WithForeground(core.ColorGray),
		Cursor:    base.Reverse(),
		Editing:   base.WithForeground(core.ColorWhite).WithBackground(core.ColorBlue),
		Pending:   base.WithForeground(core.ColorGray),
		Error:     base.WithForeground(core.ColorRed).Bold(),
		Menu:      base,
		MenuFocus: base.Reverse(),
		Dialog:    base.Bold(),
		Status:    base.Reverse(),
		DayOther:  base.WithForeground(core.ColorGray),
		DayCursor: base.Reverse(),
	}
}

// Edit is the open editor of a frame.
type Edit struct {
	At    table.Coord
	Input *editor.Input
}

// Scene is everything one frame shows. Nil parts are not drawn.
type Scene struct {
	Table  *table.Table
	Cursor table.Coord
	Edit   *Edit
	Menu   *menu.Menu
	Dialog *dialog.Dialog
	Picker *calendar.Picker
	Status string
}

// CalendarHit is what a click on the calendar popup hit.
type CalendarHit struct {
	// Nav is -1 or +1 for the previous and next month arrows.
	Nav int

	// Day is set when a day was hit; Week and Weekday index it.
	Day           bool
	Week, Weekday int
}

// Renderer draws scenes and remembers the geometry of the last frame.
type Renderer struct {
	mu      sync.Mutex
	backend backend.Backend
	opts    Options

	width, height int

	// Geometry of the last frame.
	widths []int
	xs     []int
	lines  []int // table row per screen line, -1 for none
	top    int   // body rows scrolled off the top

	menuBox core.ScreenRect
	menuIDs []string // entry id per line inside menuBox, "" for separators
	calBox  core.ScreenRect
	calRows int
}

// New creates a renderer drawing on b.
func New(b backend.Backend, opts Options) *Renderer {
	if opts.MaxColWidth <= 0 {
		opts.MaxColWidth = DefaultOptions().MaxColWidth
	}
	if opts.MinColWidth <= 0 {
		opts.MinColWidth = 1
	}
	w, h := b.Size()
	return &Renderer{backend: b, opts: opts, width: w, height: h}
}

// Resize records new screen dimensions.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

// Size returns the screen dimensions in use.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}
