package grid

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dshills/gridstorm/internal/backend"
	"github.com/dshills/gridstorm/internal/loop"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
)

// MsgDeleteRow is the confirmation asked before a row is deleted.
const MsgDeleteRow = "Delete row?"

// settle resolves the open session before a structural change.
func (c *Controller) settle() error {
	if c.sess == nil {
		return nil
	}
	c.resolve(nav.None)
	if c.sess != nil {
		return ErrBusy
	}
	return nil
}

// refCols returns the column count for a new row at before: that of the
// row it displaces, else the last row, else the dictionary width.
func (c *Controller) refCols(before int) int {
	switch {
	case c.tbl.IsBody(before):
		return c.tbl.ColCount(before)
	case c.tbl.NumRows() > 0:
		return c.tbl.ColCount(c.tbl.NumRows() - 1)
	}
	return max(c.dict.Len(), 1)
}

// InsertRow inserts an empty row before the absolute row index before.
// before may equal the row count to append.
func (c *Controller) InsertRow(before int) error {
	if c.tbl == nil {
		return ErrNotBound
	}
	if err := c.settle(); err != nil {
		return err
	}
	if _, err := c.tbl.InsertRow(before, c.refCols(before)); err != nil {
		return err
	}
	c.engine.Refresh()
	if c.cursor.Row >= before {
		c.cursor.Row++
	}
	c.clampCursor()
	c.log.WithField("row", before).Debug("row inserted")
	c.announce(backend.TaskInsert, before)
	return nil
}

// CopyRow inserts a copy of row above it. Cells are copied as escaped
// text, so markup in the source is not duplicated.
func (c *Controller) CopyRow(row int) error {
	if c.tbl == nil {
		return ErrNotBound
	}
	if !c.tbl.IsBody(row) {
		return &table.RangeError{Op: "copy row", Index: row, Min: c.tbl.NumHead(), Max: c.tbl.NumRows() - 1}
	}
	if err := c.settle(); err != nil {
		return err
	}
	src := c.tbl.Row(row)
	dst, err := c.tbl.InsertRow(row, src.Len())
	if err != nil {
		return err
	}
	for i, cell := range src.Cells {
		dst.Cells[i].HTML = table.Escape(cell.Text())
	}
	c.engine.Refresh()
	if c.cursor.Row >= row {
		c.cursor.Row++
	}
	c.log.WithField("row", row).Debug("row copied")
	c.announce(backend.TaskCopy, row)
	return nil
}

// DeleteRow removes the body row at row after confirmation. A row with
// a pending cell cannot be deleted.
func (c *Controller) DeleteRow(row int) error {
	if c.tbl == nil {
		return ErrNotBound
	}
	if !c.tbl.IsBody(row) {
		return c.tbl.DeleteRow(row)
	}
	if err := c.settle(); err != nil {
		return err
	}
	target := c.tbl.Row(row)
	if c.rowPending(target) {
		return ErrPending
	}

	remove := func() {
		at := c.tbl.IndexOf(target)
		if at < 0 {
			return
		}
		if c.rowPending(target) {
			c.surface("delete row", ErrPending)
			return
		}
		if s := c.sess; s != nil && holds(target, s.cell) {
			c.close(s, true)
		}
		if err := c.tbl.DeleteRow(at); err != nil {
			c.surface("delete row", err)
			return
		}
		c.engine.Refresh()
		if c.cursor.Row > at {
			c.cursor.Row--
		}
		c.clampCursor()
		c.log.WithFields(logrus.Fields{"row": at}).Debug("row deleted")
		c.announce(backend.TaskDelete, at)
	}

	if c.confirm == nil {
		remove()
		return nil
	}
	answer := loop.NewOnce(c.queue, func(yes bool) {
		if yes {
			remove()
		}
	})
	c.confirm(MsgDeleteRow, func() { answer.Resolve(true) }, func() { answer.Resolve(false) })
	return nil
}

// announce hands a row change to the change callback, so that a handler
// addressing cells by row index stays aligned. The local change stands
// whatever the reply; a failure is only reported.
func (c *Controller) announce(task string, row int) {
	if c.change == nil {
		return
	}
	params := backend.Params{Task: task, Table: c.tbl.ID, Row: row, ID: uuid.NewString()}
	entry := c.log.WithFields(logrus.Fields{"id": params.ID, "task": task, "row": row})
	done := loop.NewOnce(c.queue, func(r backend.Reply) {
		if r.Failed() {
			entry.WithField("error", r.Error).Warn("row change failed")
			c.report(r.Error)
		}
	})
	c.change(params, done.Func())
}

func (c *Controller) rowPending(r *table.Row) bool {
	for _, cell := range r.Cells {
		if c.pending[cell] != nil {
			return true
		}
	}
	return false
}

func holds(r *table.Row, cell *table.Cell) bool {
	for _, c := range r.Cells {
		if c == cell {
			return true
		}
	}
	return false
}
