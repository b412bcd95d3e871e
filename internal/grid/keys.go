package grid

import (
	"github.com/dshills/gridstorm/internal/editor"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
)

// Click handles a click on the cell at at. A session open elsewhere is
// resolved first without navigation; a click on the open cell is passed
// to its widget. Clicks may open skip cells. Click reports whether a
// session is open on at afterwards.
func (c *Controller) Click(at table.Coord) bool {
	if c.tbl == nil || !c.tbl.IsBody(at.Row) {
		return false
	}
	cell := c.tbl.Cell(at)
	if cell == nil || c.pending[cell] != nil {
		return false
	}

	if s := c.sess; s != nil {
		if s.cell == cell {
			if ck, ok := s.widget.(editor.Clicker); ok && s.state == Editing {
				ck.Click()
			}
			return true
		}
		if s.state != Editing {
			return false
		}
		c.resolve(nav.None)
		if c.sess != nil {
			return false
		}
	}

	c.cursor = at
	return c.open(at)
}

// moves maps navigation keys to moves.
var moves = []struct {
	key  key.Key
	mods key.Modifier
	move nav.Move
}{
	{key.KeyTab, key.ModNone, nav.Tab},
	{key.KeyTab, key.ModShift, nav.ShiftTab},
	{key.KeyEnter, key.ModNone, nav.Enter},
	{key.KeyUp, key.ModNone, nav.Up},
	{key.KeyDown, key.ModNone, nav.Down},
}

// Key handles a key press inside the open editor. Navigation keys
// resolve the session and move; Escape cancels in place; other keys go
// to the input. Key reports whether the event was consumed.
func (c *Controller) Key(ev key.Event) bool {
	s := c.sess
	if s == nil || s.state != Editing {
		return false
	}
	if ev.Is(key.KeyEscape, key.ModNone) {
		s.widget.Cancel(nav.None)
		return true
	}
	for _, m := range moves {
		if ev.Is(m.key, m.mods) {
			c.resolve(m.move)
			return true
		}
	}
	return s.widget.Input().HandleKey(ev)
}
