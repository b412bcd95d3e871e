package grid

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/backend"
	"github.com/dshills/gridstorm/internal/loop"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
)

// commit is a change handed to the change callback and not yet answered.
type commit struct {
	id       string
	cell     *table.Cell
	snapshot string
	value    string
	next     nav.Move

	// opens is the controller's open count at submission. The queued
	// move only runs if no session was opened since.
	opens uint64
}

// commit validates value for the open session and, if needed, asks for
// confirmation before submitting it.
func (c *Controller) commit(value string, next nav.Move) {
	s := c.sess
	s.next = next
	s.state = Validating

	res := c.validate(value, s.rule)
	if !res.OK {
		c.reject(s, res.Msg)
		return
	}
	final := res.Final(value)

	if !s.rule.Confirm || c.confirm == nil {
		c.submit(s, final)
		return
	}

	s.state = Confirming
	answer := loop.NewOnce(c.queue, func(yes bool) {
		if c.sess != s || s.state != Confirming {
			return
		}
		if yes {
			c.submit(s, final)
		} else {
			c.decline(s)
		}
	})
	c.confirm(s.rule.Prompt(), func() { answer.Resolve(true) }, func() { answer.Resolve(false) })
}

// reject restores the cell, flags it and reopens it.
func (c *Controller) reject(s *Session, msg string) {
	at := s.Coord()
	s.state = Rejected
	c.close(s, true)
	s.cell.Mark(table.MarkError)
	c.log.WithFields(logrus.Fields{"cell": at.String(), "msg": msg}).Debug("value rejected")
	c.report(msg)
	c.open(at)
}

// decline restores the cell and reopens it without an error.
func (c *Controller) decline(s *Session) {
	at := s.Coord()
	s.state = Rejected
	c.close(s, true)
	c.log.WithField("cell", at.String()).Debug("change declined")
	c.open(at)
}

// submit writes final into the cell, locks it and hands the change to
// the change callback. Without a callback the change applies at once.
func (c *Controller) submit(s *Session, final string) {
	at := s.Coord()
	s.state = Committing
	c.close(s, false)

	cell := s.cell
	cell.HTML = table.Escape(final)
	cell.Mark(table.MarkPending)

	p := &commit{
		id:       uuid.NewString(),
		cell:     cell,
		snapshot: s.snapshot,
		value:    final,
		next:     s.next,
		opens:    c.opens,
	}
	c.pending[cell] = p

	params := backend.Params{
		Task:   backend.TaskUpdate,
		Value:  final,
		Table:  c.tbl.ID,
		Row:    at.Row,
		Col:    at.Col,
		Column: s.rule.Name,
		ID:     p.id,
	}
	c.log.WithFields(logrus.Fields{"id": p.id, "cell": at.String()}).Debug("change submitted")

	if c.change == nil {
		c.reconcile(p, backend.Reply{Result: cell.HTML})
		return
	}
	done := loop.NewOnce(c.queue, func(r backend.Reply) { c.reconcile(p, r) })
	c.change(params, done.Func())
}

// reconcile applies the reply to a submitted change.
func (c *Controller) reconcile(p *commit, r backend.Reply) {
	if c.pending[p.cell] != p {
		return
	}
	delete(c.pending, p.cell)
	p.cell.Unmark(table.MarkPending)

	entry := c.log.WithField("id", p.id)
	at, ok := c.tbl.Locate(p.cell)
	if !ok {
		entry.Debug("reply for a removed cell")
		return
	}
	entry = entry.WithField("cell", at.String())
	quiet := c.sess == nil && c.opens == p.opens

	if r.Failed() {
		p.cell.HTML = p.snapshot
		p.cell.Mark(table.MarkError)
		entry.WithField("error", r.Error).Warn("change failed")
		c.report(r.Error)
		if quiet {
			c.open(at)
		}
		return
	}

	p.cell.HTML = backend.Sanitize(r.Result)
	p.cell.Unmark(table.MarkError)
	entry.WithField("value", p.value).Debug("change applied")
	if quiet {
		c.advance(at, p.next)
	}
}
