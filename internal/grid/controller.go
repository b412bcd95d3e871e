// Package grid binds a table to in-place cell editing.
//
// A Controller owns at most one edit session at a time. Keys and clicks
// drive the session; commits pass through the validator and the change
// callback, and replies from collaborators come back through the
// controller's queue. Everything that touches the table runs on the
// goroutine that calls Click, Key, the row operations and Drain.
package grid

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/backend"
	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/editor"
	"github.com/dshills/gridstorm/internal/loop"
	"github.com/dshills/gridstorm/internal/menu"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
	"github.com/dshills/gridstorm/internal/validate"
)

// Errors returned by controller operations.
var (
	// ErrNotBound is returned when no table is bound.
	ErrNotBound = errors.New("grid: no table bound")

	// ErrNilTable is returned by Bind for a nil table.
	ErrNilTable = errors.New("grid: nil table")

	// ErrPending is returned when a row holds a cell awaiting a reply.
	ErrPending = errors.New("row has a pending commit")

	// ErrBusy is returned when the open session could not be settled,
	// for example while it waits for a confirmation.
	ErrBusy = errors.New("edit session could not be closed")
)

// ErrorFunc shows an error message. onAck may be nil.
type ErrorFunc func(msg string, onAck func())

// ConfirmFunc asks a yes/no question. Exactly one of onYes and onNo
// should be called; extra calls are ignored.
type ConfirmFunc func(msg string, onYes, onNo func())

// CalendarFunc opens a date picker for an input.
type CalendarFunc func(req calendar.Request)

// Controller is the editing façade over one bound table.
type Controller struct {
	tbl    *table.Table
	dict   *column.Dictionary
	engine *nav.Engine

	editors  *editor.Registry
	validate validate.Func
	change   backend.ChangeFunc
	onError  ErrorFunc
	confirm  ConfirmFunc
	calendar CalendarFunc

	queue *loop.Queue
	log   *logrus.Entry

	sess    *Session
	pending map[*table.Cell]*commit
	opens   uint64
	cursor  table.Coord
	menu    *menu.Menu
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Controller) {
		if entry != nil {
			c.log = entry
		}
	}
}

// WithRegistry replaces the editor registry.
func WithRegistry(r *editor.Registry) Option {
	return func(c *Controller) {
		if r != nil {
			c.editors = r
		}
	}
}

// WithQueue shares an existing queue instead of creating one.
func WithQueue(q *loop.Queue) Option {
	return func(c *Controller) {
		if q != nil {
			c.queue = q
		}
	}
}

// New creates an unbound controller with the built-in editors and a
// validator that accepts everything.
func New(opts ...Option) *Controller {
	c := &Controller{
		editors:  editor.NewRegistry(),
		validate: validate.Accept,
		queue:    loop.NewQueue(),
		pending:  make(map[*table.Cell]*commit),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = logrus.NewEntry(l)
	}
	c.menu = c.buildMenu()
	return c
}

// Bind attaches the controller to t. An open session on a previously
// bound table is cancelled.
func (c *Controller) Bind(t *table.Table) error {
	if t == nil {
		return ErrNilTable
	}
	if s := c.sess; s != nil {
		c.close(s, true)
	}
	c.tbl = t
	c.engine = nav.New(t, c.dict)
	if first, ok := c.engine.First(); ok {
		c.cursor = first
	} else {
		c.cursor = table.Coord{Row: t.NumHead()}
	}
	c.log.WithFields(logrus.Fields{
		"table": t.ID,
		"rows":  t.NumRows(),
		"head":  t.NumHead(),
	}).Debug("table bound")
	return nil
}

// SetDictionary replaces the column rules.
func (c *Controller) SetDictionary(d *column.Dictionary) {
	c.dict = d
	if c.engine != nil {
		c.engine.SetRules(d)
	}
}

// Dictionary returns the column rules, which may be nil.
func (c *Controller) Dictionary() *column.Dictionary { return c.dict }

// SetValidator replaces the validator. nil restores Accept.
func (c *Controller) SetValidator(fn validate.Func) {
	if fn == nil {
		fn = validate.Accept
	}
	c.validate = fn
}

// SetChangeCallBack sets the change callback. Without one, commits are
// applied locally.
func (c *Controller) SetChangeCallBack(fn backend.ChangeFunc) { c.change = fn }

// SetErrorCallBack sets the error callback.
func (c *Controller) SetErrorCallBack(fn ErrorFunc) { c.onError = fn }

// SetConfirmCallBack sets the confirm callback. Without one, every
// confirmation is accepted.
func (c *Controller) SetConfirmCallBack(fn ConfirmFunc) { c.confirm = fn }

// SetCalendar sets the calendar opener used by date editors.
func (c *Controller) SetCalendar(fn CalendarFunc) { c.calendar = fn }

// RegisterEditor registers an editor factory for a column type.
func (c *Controller) RegisterEditor(typ string, f editor.Factory) error {
	return c.editors.Register(typ, f)
}

// Table returns the bound table, or nil.
func (c *Controller) Table() *table.Table { return c.tbl }

// Engine returns the navigation engine, or nil before Bind.
func (c *Controller) Engine() *nav.Engine { return c.engine }

// Session returns the open edit session, or nil.
func (c *Controller) Session() *Session { return c.sess }

// Queue returns the queue replies are posted to.
func (c *Controller) Queue() *loop.Queue { return c.queue }

// Wake signals that Drain has work.
func (c *Controller) Wake() <-chan struct{} { return c.queue.Wake() }

// Drain applies queued replies and reports how many ran.
func (c *Controller) Drain() int { return c.queue.Drain() }

// IsPending reports whether the cell at at awaits a change reply.
func (c *Controller) IsPending(at table.Coord) bool {
	if c.tbl == nil {
		return false
	}
	cell := c.tbl.Cell(at)
	return cell != nil && c.pending[cell] != nil
}

// Pending returns the number of commits awaiting a reply.
func (c *Controller) Pending() int { return len(c.pending) }

// Cursor returns the cell the keyboard points at while no session is
// open. It follows the session when one is.
func (c *Controller) Cursor() table.Coord { return c.cursor }

// MoveCursor moves the cursor by m over every body cell, ignoring the
// column rules. It reports whether the cursor moved.
func (c *Controller) MoveCursor(m nav.Move) bool {
	if c.engine == nil || c.sess != nil {
		return false
	}
	to := c.engine.Step(c.cursor, m)
	if to == c.cursor || c.tbl.Cell(to) == nil || !c.tbl.IsBody(to.Row) {
		return false
	}
	c.cursor = to
	return true
}

// OpenAtCursor opens a session on the cursor cell.
func (c *Controller) OpenAtCursor() bool {
	return c.Click(c.cursor)
}

func (c *Controller) rule(col int) column.Rule {
	return c.dict.Rule(col)
}

// report surfaces msg through the error callback.
func (c *Controller) report(msg string) {
	if c.onError == nil {
		c.log.WithField("msg", msg).Info("error without callback")
		return
	}
	c.onError(msg, nil)
}

// surface reports a failed row operation.
func (c *Controller) surface(op string, err error) {
	if err == nil {
		return
	}
	c.log.WithError(err).WithField("op", op).Warn("row operation failed")
	c.report(err.Error())
}

// clampCursor keeps the cursor on a body cell after rows change.
func (c *Controller) clampCursor() {
	if c.tbl.IsBody(c.cursor.Row) && c.tbl.Cell(c.cursor) != nil {
		return
	}
	row := min(c.cursor.Row, c.tbl.NumRows()-1)
	if !c.tbl.IsBody(row) {
		c.cursor, _ = c.engine.First()
		return
	}
	c.cursor = table.Coord{Row: row, Col: min(c.cursor.Col, max(c.tbl.ColCount(row)-1, 0))}
}
