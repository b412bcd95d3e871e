package grid

import (
	"github.com/dshills/gridstorm/internal/menu"
	"github.com/dshills/gridstorm/internal/table"
)

// Context menu entry ids.
const (
	MenuInsert = "insert"
	MenuCopy   = "copy"
	MenuDelete = "delete"
)

func (c *Controller) buildMenu() *menu.Menu {
	m := menu.New()
	m.Add(MenuInsert, "+", "Insert row", func(t menu.Target) {
		at := c.tbl.NumRows()
		if t.Kind == menu.TargetCell {
			at = t.Cell.Row
		}
		c.surface("insert row", c.InsertRow(at))
	})
	m.Add(MenuCopy, "=", "Copy row", func(t menu.Target) {
		c.surface("copy row", c.CopyRow(t.Cell.Row))
	})
	m.AddSeparator()
	m.Add(MenuDelete, "-", "Delete row", func(t menu.Target) {
		c.surface("delete row", c.DeleteRow(t.Cell.Row))
	})
	return m
}

// Menu returns the row context menu.
func (c *Controller) Menu() *menu.Menu { return c.menu }

// ContextMenu opens the row menu for a right click at screen position x,
// y over the cell at. Outside the body only insertion is offered, and it
// appends. It returns nil when no table is bound.
func (c *Controller) ContextMenu(at table.Coord, x, y int) *menu.Menu {
	if c.tbl == nil {
		return nil
	}
	if c.tbl.IsBody(at.Row) && c.tbl.Cell(at) != nil {
		c.menu.Show(MenuCopy)
		c.menu.Show(MenuDelete)
		c.menu.Open(menu.CellTarget(at, x, y))
		return c.menu
	}
	c.menu.Hide(MenuCopy)
	c.menu.Hide(MenuDelete)
	c.menu.Open(menu.Target{Kind: menu.TargetGeneric, X: x, Y: y})
	return c.menu
}
