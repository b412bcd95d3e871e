package renderer

import (
	"strings"

	"github.com/dshills/gridstorm/internal/menu"
	"github.com/dshills/gridstorm/internal/renderer/core"
	"github.com/dshills/gridstorm/internal/table"
)

// cellText is the single-line text a cell shows.
func cellText(c *table.Cell) string {
	return strings.Join(strings.Fields(c.Text()), " ")
}

// layoutColumns sizes every column to its widest cell within the
// configured bounds. The edited column grows to fit its input.
func (r *Renderer) layoutColumns(s Scene) {
	ncols := 0
	for i := 0; i < s.Table.NumRows(); i++ {
		ncols = max(ncols, s.Table.ColCount(i))
	}

	r.widths = make([]int, ncols)
	for i := 0; i < s.Table.NumRows(); i++ {
		for j, c := range s.Table.Row(i).Cells {
			r.widths[j] = max(r.widths[j], core.StringWidth(cellText(c)))
		}
	}
	if s.Edit != nil && s.Edit.At.Col < ncols {
		j := s.Edit.At.Col
		r.widths[j] = max(r.widths[j], s.Edit.Input.Width()+1)
	}

	r.xs = make([]int, ncols)
	x := 0
	for j, w := range r.widths {
		w = min(max(w, r.opts.MinColWidth), r.opts.MaxColWidth)
		r.widths[j] = w
		r.xs[j] = x
		x += w + 1
	}
}

// bodyLines returns how many body rows fit on screen.
func (r *Renderer) bodyLines(t *table.Table) int {
	// header rows, the rule below them and the status line
	return max(r.height-t.NumHead()-2, 0)
}

// scroll keeps the focused body row visible.
func (r *Renderer) scroll(t *table.Table, focus int) {
	visible := r.bodyLines(t)
	body := focus - t.NumHead()
	switch {
	case visible == 0:
		r.top = 0
	case body < 0:
		// header focus leaves the scroll position alone
	case body < r.top:
		r.top = body
	case body >= r.top+visible:
		r.top = body - visible + 1
	}
	r.top = max(min(r.top, t.NumBody()-visible), 0)
}

// layoutLines maps screen lines to table rows.
func (r *Renderer) layoutLines(t *table.Table) {
	r.lines = make([]int, r.height)
	for i := range r.lines {
		r.lines[i] = -1
	}
	nh := t.NumHead()
	for i := 0; i < nh && i < r.height; i++ {
		r.lines[i] = i
	}
	for i := 0; i < r.bodyLines(t); i++ {
		row := nh + r.top + i
		if row >= t.NumRows() {
			break
		}
		r.lines[nh+1+i] = row
	}
}

// cellBox returns the screen rectangle of a cell in the last frame.
func (r *Renderer) cellBox(c table.Coord) (core.ScreenRect, bool) {
	if c.Col < 0 || c.Col >= len(r.xs) {
		return core.ScreenRect{}, false
	}
	for y, row := range r.lines {
		if row == c.Row {
			return core.RectFromSize(y, r.xs[c.Col], 1, r.widths[c.Col]), true
		}
	}
	return core.ScreenRect{}, false
}

// CellBox returns where the cell at c was drawn in the last frame.
func (r *Renderer) CellBox(c table.Coord) (core.ScreenRect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cellBox(c)
}

// CellAt returns the cell drawn at x, y in the last frame. Separators
// and positions past the last column hit nothing.
func (r *Renderer) CellAt(x, y int) (table.Coord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if y < 0 || y >= len(r.lines) || r.lines[y] < 0 {
		return table.Coord{}, false
	}
	for j, left := range r.xs {
		if x >= left && x < left+r.widths[j] {
			return table.Coord{Row: r.lines[y], Col: j}, true
		}
	}
	return table.Coord{}, false
}

// MenuEntryAt returns the id of the menu entry drawn at x, y. The second
// result reports whether x, y is inside the menu box at all.
func (r *Renderer) MenuEntryAt(x, y int) (id string, inside bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.menuBox.IsEmpty() || !r.menuBox.Contains(x, y) {
		return "", false
	}
	i := y - r.menuBox.Top - 1
	if i < 0 || i >= len(r.menuIDs) {
		return "", true
	}
	return r.menuIDs[i], true
}

// CalendarAt returns what the calendar popup shows at x, y. The second
// result reports whether x, y is inside the popup.
func (r *Renderer) CalendarAt(x, y int) (CalendarHit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	box := r.calBox
	if box.IsEmpty() || !box.Contains(x, y) {
		return CalendarHit{}, false
	}
	inner := x - box.Left - 1
	switch line := y - box.Top - 1; {
	case line == 0 && inner >= 0 && inner < 2:
		return CalendarHit{Nav: -1}, true
	case line == 0 && inner >= calInner-2 && inner < calInner:
		return CalendarHit{Nav: 1}, true
	case line >= 2 && line-2 < r.calRows && inner >= 0 && inner < calInner:
		return CalendarHit{Day: true, Week: line - 2, Weekday: inner / 3}, true
	}
	return CalendarHit{}, true
}

// menuLines lists what the menu shows, one entry per line, dropping
// separators at either end and repeated ones.
func menuLines(m *menu.Menu) []*menu.Entry {
	var out []*menu.Entry
	for _, e := range m.Entries() {
		if e.Hidden {
			continue
		}
		if e.IsSeparator() && (len(out) == 0 || out[len(out)-1].IsSeparator()) {
			continue
		}
		out = append(out, e)
	}
	if n := len(out); n > 0 && out[n-1].IsSeparator() {
		out = out[:n-1]
	}
	return out
}

// place clamps a w x h box anchored at x, y onto the screen.
func (r *Renderer) place(x, y, w, h int) core.ScreenRect {
	w, h = min(w, r.width), min(h, r.height)
	x = max(min(x, r.width-w), 0)
	y = max(min(y, r.height-h), 0)
	return core.RectFromSize(y, x, h, w)
}
