package nav

import (
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/table"
)

// Grid is the shape the engine navigates. *table.Table implements it.
type Grid interface {
	NumRows() int
	NumHead() int
	ColCount(row int) int
}

// Rules supplies the column rule for a cell index. *column.Dictionary
// implements it.
type Rules interface {
	Rule(i int) column.Rule
}

// Engine computes navigation targets from cached grid dimensions.
// Call Refresh after the grid's rows change.
type Engine struct {
	grid  Grid
	rules Rules

	nr int
	nh int
	nc []int
}

// New creates an engine over g and refreshes its dimensions. rules may be
// nil, in which case every cell takes the default rule.
func New(g Grid, rules Rules) *Engine {
	e := &Engine{grid: g, rules: rules}
	e.Refresh()
	return e
}

// SetRules replaces the column rules.
func (e *Engine) SetRules(rules Rules) {
	e.rules = rules
}

// Refresh recomputes nr, nh and the per-row column counts.
func (e *Engine) Refresh() {
	e.nr = e.grid.NumRows()
	e.nh = e.grid.NumHead()
	e.nc = e.nc[:0]
	for r := 0; r < e.nr; r++ {
		e.nc = append(e.nc, e.grid.ColCount(r))
	}
}

// Rows returns the cached total row count nr.
func (e *Engine) Rows() int { return e.nr }

// Head returns the cached header row count nh.
func (e *Engine) Head() int { return e.nh }

// Cols returns the cached column count of row, or 0.
func (e *Engine) Cols(row int) int {
	if row < 0 || row >= len(e.nc) {
		return 0
	}
	return e.nc[row]
}

// Rule returns the column rule for cell index col.
func (e *Engine) Rule(col int) column.Rule {
	if e.rules == nil {
		return column.Default()
	}
	return e.rules.Rule(col)
}

// Enterable reports whether keyboard navigation may stop on c.
func (e *Engine) Enterable(c table.Coord) bool {
	if !e.valid(c) {
		return false
	}
	r := e.Rule(c.Col)
	return r.Editable && !r.Skip
}

func (e *Engine) valid(c table.Coord) bool {
	return c.Row >= e.nh && c.Row < e.nr && c.Col >= 0 && c.Col < e.nc[c.Row]
}

// wrapRow folds row into the data-row range.
func (e *Engine) wrapRow(row int) int {
	switch {
	case row < e.nh:
		return e.nr - 1
	case row >= e.nr:
		return e.nh
	}
	return row
}

// Step applies m once from c with column rollover and row wrap, ignoring
// column rules. The result may not denote a cell when rows differ in
// length.
func (e *Engine) Step(c table.Coord, m Move) table.Coord {
	if e.nr <= e.nh {
		return c
	}
	dr, dc := m.Delta()
	row, col := c.Row+dr, c.Col+dc

	switch {
	case col < 0:
		row = e.wrapRow(row - 1)
		col = e.Cols(row) - 1
	case dc != 0 && col >= e.Cols(c.Row):
		row = e.wrapRow(row + 1)
		col = 0
	default:
		row = e.wrapRow(row)
	}
	return table.Coord{Row: row, Col: col}
}

// Next returns the keyboard target for m from c, passing over skip and
// non-editable cells. The search covers at most one traversal of the
// data cells; ok is false when no cell qualifies or the target does not
// exist, and the caller then leaves the cursor where it is.
func (e *Engine) Next(c table.Coord, m Move) (table.Coord, bool) {
	if m == None || e.nr <= e.nh {
		return c, false
	}

	budget := 1
	for r := e.nh; r < e.nr; r++ {
		budget += e.nc[r]
	}

	cur, step := c, m
	for i := 0; i < budget; i++ {
		cur = e.Step(cur, step)
		if !e.valid(cur) {
			return c, false
		}
		if e.Enterable(cur) {
			return cur, true
		}
		step = m.continuation()
	}
	return c, false
}

// First returns the first enterable data cell in reading order.
func (e *Engine) First() (table.Coord, bool) {
	for r := e.nh; r < e.nr; r++ {
		for col := 0; col < e.nc[r]; col++ {
			c := table.Coord{Row: r, Col: col}
			if e.Enterable(c) {
				return c, true
			}
		}
	}
	return table.Coord{}, false
}
