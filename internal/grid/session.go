package grid

import (
	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/editor"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
)

// State is the commit state of an edit session.
type State uint8

const (
	Editing State = iota
	Validating
	Confirming
	Rejected
	Committing
	Applied
	Failed
)

var stateNames = [...]string{
	Editing:    "Editing",
	Validating: "Validating",
	Confirming: "Confirming",
	Rejected:   "Rejected",
	Committing: "Committing",
	Applied:    "Applied",
	Failed:     "Failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// Session is the open editor on one cell. The cell is held by pointer so
// the session survives row insertions above it.
type Session struct {
	tbl      *table.Table
	cell     *table.Cell
	rule     column.Rule
	widget   editor.Widget
	snapshot string
	next     nav.Move
	state    State
}

// Coord returns the current coordinate of the session cell.
func (s *Session) Coord() table.Coord {
	at, _ := s.tbl.Locate(s.cell)
	return at
}

// Cell returns the cell being edited.
func (s *Session) Cell() *table.Cell { return s.cell }

// Input returns the editor input.
func (s *Session) Input() *editor.Input { return s.widget.Input() }

// Widget returns the editor widget.
func (s *Session) Widget() editor.Widget { return s.widget }

// Rule returns the column rule the session was opened with.
func (s *Session) Rule() column.Rule { return s.rule }

// Snapshot returns the cell HTML from before editing began.
func (s *Session) Snapshot() string { return s.snapshot }

// State returns the commit state.
func (s *Session) State() State { return s.state }

// sessionHost is the editor.Host handed to a session's widget. Calls
// from a widget whose session is no longer the open, editing one are
// dropped.
type sessionHost struct {
	c *Controller
	s *Session
}

func (h *sessionHost) live() bool {
	return h.c.sess == h.s && h.s.state == Editing
}

func (h *sessionHost) Commit(value string, next nav.Move) {
	if h.live() {
		h.c.commit(value, next)
	}
}

func (h *sessionHost) Cancel(next nav.Move) {
	if h.live() {
		h.c.cancel(next)
	}
}

func (h *sessionHost) Calendar(req calendar.Request) {
	if h.c.calendar == nil || !h.live() {
		return
	}
	write := req.WriteBack
	req.WriteBack = func(v string) {
		if h.live() && write != nil {
			write(v)
		}
	}
	h.c.calendar(req)
}

// open starts a session on the body cell at at. It refuses header
// cells, read-only columns and cells awaiting a reply.
func (c *Controller) open(at table.Coord) bool {
	if c.tbl == nil || c.sess != nil || !c.tbl.IsBody(at.Row) {
		return false
	}
	cell := c.tbl.Cell(at)
	if cell == nil || c.pending[cell] != nil {
		return false
	}
	rule := c.rule(at.Col)
	if !rule.Editable {
		return false
	}

	s := &Session{tbl: c.tbl, cell: cell, rule: rule, snapshot: cell.HTML, state: Editing}
	s.widget = c.editors.Create(cell, rule, &sessionHost{c: c, s: s})
	cell.Mark(table.MarkEditing)
	c.sess = s
	c.opens++
	c.cursor = at
	c.log.WithFields(logrus.Fields{
		"cell": at.String(),
		"type": rule.Type,
	}).Debug("session opened")
	return true
}

// close ends s, restoring the snapshot when restore is set.
func (c *Controller) close(s *Session, restore bool) {
	if restore {
		s.cell.HTML = s.snapshot
	}
	s.cell.Unmark(table.MarkEditing)
	if c.sess == s {
		c.sess = nil
	}
}

// resolve commits the open session if it changed and cancels it
// otherwise, queueing next.
func (c *Controller) resolve(next nav.Move) {
	s := c.sess
	if s == nil || s.state != Editing {
		return
	}
	if s.widget.Changed() {
		s.widget.Commit(next)
	} else {
		s.widget.Cancel(next)
	}
}

// cancel discards the open session and performs next.
func (c *Controller) cancel(next nav.Move) {
	s := c.sess
	at := s.Coord()
	c.close(s, true)
	c.log.WithField("cell", at.String()).Debug("session cancelled")
	c.advance(at, next)
}

// advance opens the keyboard target of m from from.
func (c *Controller) advance(from table.Coord, m nav.Move) {
	if m == nav.None || c.engine == nil {
		return
	}
	if to, ok := c.engine.Next(from, m); ok {
		c.open(to)
	}
}
