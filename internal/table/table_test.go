package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoHTML = `<!DOCTYPE html><html><body>
<table id="other"><tr><td>x</td></tr></table>
<table id="t">
  <thead>
    <tr><th colspan="2">Sticky</th><th colspan="4">normal</th></tr>
    <tr><th>Column 0</th><th>Column 1</th><th>Column 2</th></tr>
  </thead>
  <tbody>
    <tr><td></td><td>2asasa</td><td>10.06.1954</td></tr>
    <tr><td>-7.9</td><td><b>bold</b> &amp; more</td><td></td></tr>
  </tbody>
</table></body></html>`

func TestParseHTML(t *testing.T) {
	tbl, err := ParseHTML(strings.NewReader(demoHTML), "t")
	require.NoError(t, err)

	assert.Equal(t, "t", tbl.ID)
	assert.Equal(t, 2, tbl.NumHead())
	assert.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, 2, tbl.ColCount(0))
	assert.Equal(t, 3, tbl.ColCount(2))

	cell := tbl.Cell(Coord{Row: 3, Col: 1})
	require.NotNil(t, cell)
	assert.Equal(t, "<b>bold</b> &amp; more", cell.HTML)
	assert.Equal(t, "bold & more", cell.Text())
	assert.True(t, tbl.Cell(Coord{Row: 0, Col: 0}).Header)
}

func TestParseHTMLFirstTable(t *testing.T) {
	tbl, err := ParseHTML(strings.NewReader(demoHTML), "")
	require.NoError(t, err)
	assert.Equal(t, "other", tbl.ID)
	assert.Equal(t, 0, tbl.NumHead())
	assert.Equal(t, 1, tbl.NumRows())
}

func TestParseHTMLNotFound(t *testing.T) {
	_, err := ParseHTML(strings.NewReader(demoHTML), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCellOutOfRange(t *testing.T) {
	tbl := New("t", [][]string{{"a", "b"}}, [][]string{{"1", "2"}})

	tests := []Coord{{-1, 0}, {0, -1}, {0, 2}, {2, 0}}
	for _, c := range tests {
		if tbl.Cell(c) != nil {
			t.Errorf("Cell(%v) should be nil", c)
		}
	}
	assert.NotNil(t, tbl.Cell(Coord{Row: 1, Col: 1}))
}

func TestInsertRow(t *testing.T) {
	tbl := New("t", [][]string{{"h"}}, [][]string{{"1", "2"}, {"3", "4"}})

	row, err := tbl.InsertRow(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.NumRows())
	assert.Same(t, row, tbl.Row(2))
	assert.Equal(t, "3", tbl.Cell(Coord{Row: 3, Col: 0}).HTML)

	_, err = tbl.InsertRow(tbl.NumRows(), 2)
	require.NoError(t, err, "appending at NumRows is allowed")

	_, err = tbl.InsertRow(0, 2)
	var rerr *RangeError
	assert.True(t, errors.As(err, &rerr))
}

func TestDeleteRow(t *testing.T) {
	tbl := New("t", [][]string{{"h"}}, [][]string{{"1"}, {"2"}})

	require.NoError(t, tbl.DeleteRow(1))
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "2", tbl.Cell(Coord{Row: 1, Col: 0}).HTML)

	assert.ErrorIs(t, tbl.DeleteRow(0), ErrHeaderRow)

	var rerr *RangeError
	assert.True(t, errors.As(tbl.DeleteRow(5), &rerr))
}

func TestLocate(t *testing.T) {
	tbl := New("t", nil, [][]string{{"a", "b"}, {"c", "d"}})
	cell := tbl.Cell(Coord{Row: 1, Col: 1})

	_, err := tbl.InsertRow(0, 2)
	require.NoError(t, err)

	at, ok := tbl.Locate(cell)
	require.True(t, ok)
	assert.Equal(t, Coord{Row: 2, Col: 1}, at)

	_, ok = tbl.Locate(NewCell("x"))
	assert.False(t, ok)
}

func TestMarks(t *testing.T) {
	c := NewCell("")
	c.Mark(MarkPending)
	c.Mark(MarkError)
	assert.True(t, c.Has(MarkPending))
	c.Unmark(MarkPending)
	assert.False(t, c.Has(MarkPending))
	assert.Equal(t, MarkError, c.Marks())
}

func TestWriteHTMLRoundTrip(t *testing.T) {
	tbl, err := ParseHTML(strings.NewReader(demoHTML), "t")
	require.NoError(t, err)
	tbl.Cell(Coord{Row: 2, Col: 1}).HTML = "changed"

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteHTML(&buf))

	again, err := ParseHTML(&buf, "t")
	require.NoError(t, err)
	assert.Equal(t, tbl.NumRows(), again.NumRows())
	assert.Equal(t, tbl.NumHead(), again.NumHead())
	assert.Equal(t, "changed", again.Cell(Coord{Row: 2, Col: 1}).HTML)
	assert.Equal(t, []Attr{{Key: "colspan", Val: "2"}}, again.Cell(Coord{Row: 0, Col: 0}).Attrs)
}

func TestTextAndEscape(t *testing.T) {
	assert.Equal(t, "a < b", Text("a &lt; b"))
	assert.Equal(t, "x", Text("<script>alert(1)</script>x"))
	assert.Equal(t, "&lt;i&gt;", Escape("<i>"))
}
