package app

import (
	"errors"
	"fmt"

	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/renderer"
	screen "github.com/dshills/gridstorm/internal/renderer/backend"
	"github.com/dshills/gridstorm/internal/table"
)

// eventLoop runs until quit or until the backend closes. All grid state
// is touched on this goroutine only; replies from the change transport
// arrive through the grid queue, which wakes PollEvent.
func (a *Application) eventLoop() error {
	stop := make(chan struct{})
	defer close(stop)
	go a.forwardWakeups(stop)

	a.draw()
	for {
		select {
		case <-a.done:
			return nil
		default:
		}

		ev := a.backend.PollEvent()
		if err := a.handleEvent(ev); err != nil {
			return err
		}
		a.grid.Drain()
		if a.quit {
			return ErrQuit
		}
		a.draw()
	}
}

// forwardWakeups turns grid wakeups into backend interrupts.
func (a *Application) forwardWakeups(stop <-chan struct{}) {
	wake := a.grid.Wake()
	for {
		select {
		case <-stop:
			return
		case <-wake:
			a.backend.Interrupt()
		}
	}
}

func (a *Application) handleEvent(ev screen.Event) error {
	switch ev.Type {
	case screen.EventClosed:
		return ErrQuit
	case screen.EventResize:
		a.renderer.Resize(ev.Width, ev.Height)
	case screen.EventKey:
		a.handleKey(ev.Key)
	case screen.EventMouse:
		a.handleMouse(ev)
	}
	return nil
}

// handleKey offers ev to the topmost layer first: dialogs, the context
// menu, the date picker, the open editor, then the key bindings.
func (a *Application) handleKey(ev key.Event) {
	switch {
	case a.dialogs.IsOpen():
		a.dialogs.HandleKey(ev)
		return
	case a.grid.Menu().IsOpen():
		a.grid.Menu().HandleKey(ev)
		return
	case a.picker.IsOpen():
		a.picker.HandleKey(ev)
		return
	}

	if s := a.grid.Session(); s != nil && s.State() == grid.Editing {
		if ev.Is(key.KeyF4, key.ModNone) {
			a.grid.Click(s.Coord())
			return
		}
		if a.grid.Key(ev) {
			return
		}
	}

	a.run(lookup(DefaultBindings(), ev))
}

// run performs a bound action.
func (a *Application) run(action string) {
	g := a.grid
	cursor := g.Cursor()
	switch action {
	case ActionOpen:
		g.OpenAtCursor()
	case ActionNext:
		g.MoveCursor(nav.Tab)
	case ActionPrev:
		g.MoveCursor(nav.ShiftTab)
	case ActionUp:
		g.MoveCursor(nav.Up)
	case ActionDown:
		g.MoveCursor(nav.Down)
	case ActionMenu:
		x, y := 0, 0
		if box, ok := a.renderer.CellBox(cursor); ok {
			x, y = box.Left, box.Top
		}
		g.ContextMenu(cursor, x, y)
	case ActionInsertRow:
		a.rowOp("insert row", g.InsertRow(cursor.Row))
	case ActionCopyRow:
		a.rowOp("copy row", g.CopyRow(cursor.Row))
	case ActionDeleteRow:
		a.rowOp("delete row", g.DeleteRow(cursor.Row))
	case ActionSave:
		a.save()
	case ActionQuit:
		a.requestQuit()
	}
}

func (a *Application) rowOp(op string, err error) {
	if err == nil {
		return
	}
	a.log.WithError(err).WithField("op", op).Warn("row operation failed")
	a.dialogs.Alert(err.Error(), nil)
}

func (a *Application) save() {
	if err := a.Save(); err != nil {
		a.log.WithError(err).Error("save failed")
		a.dialogs.Alert(err.Error(), nil)
		return
	}
	a.status = "saved " + a.cfg.Table.Path
}

// requestQuit quits, asking first when there are unsaved changes or
// changes still awaiting a reply.
func (a *Application) requestQuit() {
	switch {
	case a.grid.Pending() > 0:
		a.dialogs.Confirm("Changes are still being sent. Quit anyway?", a.setQuit, nil)
	case a.Modified():
		a.dialogs.Confirm("Quit without saving?", a.setQuit, nil)
	default:
		a.setQuit()
	}
}

func (a *Application) setQuit() { a.quit = true }

// handleMouse routes a press. Open popups take the press first; a press
// outside of them closes them.
func (a *Application) handleMouse(ev screen.Event) {
	if a.dialogs.IsOpen() {
		return
	}
	g := a.grid

	if m := g.Menu(); m.IsOpen() {
		if id, inside := a.renderer.MenuEntryAt(ev.X, ev.Y); inside {
			if id != "" && ev.Button == screen.MouseLeft {
				m.Activate(id)
			}
			return
		}
		m.Close()
		if ev.Button != screen.MouseRight {
			return
		}
	}

	if a.picker.IsOpen() {
		hit, inside := a.renderer.CalendarAt(ev.X, ev.Y)
		switch {
		case !inside:
			a.picker.Close()
		case hit.Nav != 0:
			a.picker.MoveMonths(hit.Nav)
			return
		case hit.Day:
			a.picker.SelectAt(hit.Week, hit.Weekday)
			return
		default:
			return
		}
	}

	at, onCell := a.renderer.CellAt(ev.X, ev.Y)
	switch ev.Button {
	case screen.MouseLeft:
		if onCell {
			g.Click(at)
		}
	case screen.MouseRight:
		if !onCell {
			at = table.Coord{Row: -1}
		}
		g.ContextMenu(at, ev.X, ev.Y)
	case screen.MouseWheelUp:
		g.MoveCursor(nav.Up)
	case screen.MouseWheelDown:
		g.MoveCursor(nav.Down)
	}
}

// draw renders the current state.
func (a *Application) draw() {
	g := a.grid
	scene := renderer.Scene{
		Table:  g.Table(),
		Cursor: g.Cursor(),
		Menu:   g.Menu(),
		Dialog: a.dialogs.Top(),
		Picker: a.picker,
		Status: a.statusLine(),
	}
	if s := g.Session(); s != nil && s.State() == grid.Editing {
		scene.Edit = &renderer.Edit{At: s.Coord(), Input: s.Input()}
	}
	a.renderer.Draw(scene)
}

func (a *Application) statusLine() string {
	c := a.grid.Cursor()
	line := fmt.Sprintf(" row %d col %d", c.Row, c.Col+1)
	if n := a.grid.Pending(); n > 0 {
		line += fmt.Sprintf("  %d pending", n)
	}
	if a.Modified() {
		line += "  [modified]"
	}
	if a.status != "" {
		line += "  " + a.status
	}
	return line
}

// IsQuit reports whether err ends the application normally.
func IsQuit(err error) bool {
	return err == nil || errors.Is(err, ErrQuit)
}
