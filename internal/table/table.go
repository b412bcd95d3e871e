// Package table holds the in-memory table document edited by the grid.
//
// A Table is split into header rows and body rows. Row indices used by the
// rest of the system are absolute: rows 0..NumHead()-1 are header rows and
// NumHead()..NumRows()-1 are data rows. Cells store raw HTML content plus
// a small set of marks that renderers project on screen.
package table

import (
	"errors"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// Errors returned by table operations.
var (
	// ErrNotFound is returned when no matching table element exists.
	ErrNotFound = errors.New("table not found")

	// ErrHeaderRow is returned when a body operation targets a header row.
	ErrHeaderRow = errors.New("row is a header row")
)

// RangeError reports an index outside the valid range of an operation.
type RangeError struct {
	Op    string
	Index int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [%d, %d]", e.Op, e.Index, e.Min, e.Max)
}

// textPolicy strips every tag; it is safe for concurrent use.
var textPolicy = bluemonday.StrictPolicy()

// Coord addresses one cell by absolute row and column index.
type Coord struct {
	Row int
	Col int
}

// String returns "(row,col)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Mark is a rendered projection of grid state onto a cell.
type Mark uint8

const (
	MarkNone    Mark = 0
	MarkEditing Mark = 1 << iota
	MarkPending
	MarkError
)

// Cell is a single table cell.
type Cell struct {
	// HTML is the raw inner content of the cell.
	HTML string

	// Header is true for th cells.
	Header bool

	// Attrs are the element attributes kept for round-tripping.
	Attrs []Attr

	marks Mark
}

// Attr is a single HTML attribute.
type Attr struct {
	Key string
	Val string
}

// NewCell creates a body cell with the given raw HTML.
func NewCell(content string) *Cell {
	return &Cell{HTML: content}
}

// Text returns the cell content with tags removed and entities decoded.
func (c *Cell) Text() string {
	return Text(c.HTML)
}

// Has reports whether the cell carries mark m.
func (c *Cell) Has(m Mark) bool {
	return c.marks&m != 0
}

// Mark sets mark m.
func (c *Cell) Mark(m Mark) {
	c.marks |= m
}

// Unmark clears mark m.
func (c *Cell) Unmark(m Mark) {
	c.marks &^= m
}

// Marks returns the current mark set.
func (c *Cell) Marks() Mark {
	return c.marks
}

// Row is an ordered list of cells.
type Row struct {
	Cells []*Cell
}

// Len returns the number of cells in the row.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Cells)
}

// Table is a table document with header and body sections.
type Table struct {
	ID   string
	head []*Row
	body []*Row
}

// New creates a table from plain string contents. Header contents are
// escaped; body contents are taken as raw HTML.
func New(id string, head, body [][]string) *Table {
	t := &Table{ID: id}
	for _, cols := range head {
		row := &Row{}
		for _, s := range cols {
			row.Cells = append(row.Cells, &Cell{HTML: Escape(s), Header: true})
		}
		t.head = append(t.head, row)
	}
	for _, cols := range body {
		row := &Row{}
		for _, s := range cols {
			row.Cells = append(row.Cells, NewCell(s))
		}
		t.body = append(t.body, row)
	}
	return t
}

// NumRows returns the total row count including header rows.
func (t *Table) NumRows() int {
	return len(t.head) + len(t.body)
}

// NumHead returns the number of header rows.
func (t *Table) NumHead() int {
	return len(t.head)
}

// NumBody returns the number of data rows.
func (t *Table) NumBody() int {
	return len(t.body)
}

// IsBody reports whether row is a data row index.
func (t *Table) IsBody(row int) bool {
	return row >= len(t.head) && row < t.NumRows()
}

// Row returns the row at the absolute index, or nil.
func (t *Table) Row(i int) *Row {
	switch {
	case i < 0:
		return nil
	case i < len(t.head):
		return t.head[i]
	case i < t.NumRows():
		return t.body[i-len(t.head)]
	}
	return nil
}

// ColCount returns the number of cells in the given row.
func (t *Table) ColCount(row int) int {
	return t.Row(row).Len()
}

// Cell returns the cell at c, or nil if c does not denote a cell.
func (t *Table) Cell(c Coord) *Cell {
	r := t.Row(c.Row)
	if r == nil || c.Col < 0 || c.Col >= len(r.Cells) {
		return nil
	}
	return r.Cells[c.Col]
}

// Locate returns the coordinate of cell. Coordinates shift when rows are
// inserted or deleted, so callers holding a cell pointer re-locate it.
func (t *Table) Locate(cell *Cell) (Coord, bool) {
	for ri := 0; ri < t.NumRows(); ri++ {
		for ci, c := range t.Row(ri).Cells {
			if c == cell {
				return Coord{Row: ri, Col: ci}, true
			}
		}
	}
	return Coord{}, false
}

// IndexOf returns the absolute index of row, or -1.
func (t *Table) IndexOf(row *Row) int {
	for i := 0; i < t.NumRows(); i++ {
		if t.Row(i) == row {
			return i
		}
	}
	return -1
}

// InsertRow inserts an empty body row with nc cells before absolute index
// at. at may equal NumRows() to append.
func (t *Table) InsertRow(at, nc int) (*Row, error) {
	nh := len(t.head)
	if at < nh || at > t.NumRows() {
		return nil, &RangeError{Op: "insert row", Index: at, Min: nh, Max: t.NumRows()}
	}
	row := &Row{Cells: make([]*Cell, nc)}
	for i := range row.Cells {
		row.Cells[i] = NewCell("")
	}
	i := at - nh
	t.body = append(t.body, nil)
	copy(t.body[i+1:], t.body[i:])
	t.body[i] = row
	return row, nil
}

// DeleteRow removes the body row at absolute index at.
func (t *Table) DeleteRow(at int) error {
	if at >= 0 && at < len(t.head) {
		return ErrHeaderRow
	}
	if !t.IsBody(at) {
		return &RangeError{Op: "delete row", Index: at, Min: len(t.head), Max: t.NumRows() - 1}
	}
	i := at - len(t.head)
	t.body = append(t.body[:i], t.body[i+1:]...)
	return nil
}

// Text strips tags from raw HTML and decodes entities.
func Text(raw string) string {
	return html.UnescapeString(textPolicy.Sanitize(raw))
}

// Escape HTML-escapes plain text for storage as cell content.
func Escape(s string) string {
	return html.EscapeString(s)
}
