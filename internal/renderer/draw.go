package renderer

import (
	"fmt"
	"strings"

	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/dialog"
	"github.com/dshills/gridstorm/internal/editor"
	"github.com/dshills/gridstorm/internal/menu"
	"github.com/dshills/gridstorm/internal/renderer/core"
	"github.com/dshills/gridstorm/internal/table"
)

// calInner is the inner width of the calendar popup: seven 3-wide days.
const calInner = 7 * 3

// Draw renders a full frame and flushes it.
func (r *Renderer) Draw(s Scene) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.backend
	b.Clear()
	b.HideCursor()
	r.menuBox, r.menuIDs = core.ScreenRect{}, nil
	r.calBox, r.calRows = core.ScreenRect{}, 0

	if s.Table != nil {
		r.layoutColumns(s)
		focus := s.Cursor.Row
		if s.Edit != nil {
			focus = s.Edit.At.Row
		}
		r.scroll(s.Table, focus)
		r.layoutLines(s.Table)
		r.drawTable(s)
	} else {
		r.widths, r.xs, r.lines = nil, nil, nil
	}

	if s.Menu != nil && s.Menu.IsOpen() {
		r.drawMenu(s.Menu)
	}
	if s.Picker != nil && s.Picker.IsOpen() {
		r.drawCalendar(s)
	}
	if s.Dialog != nil {
		r.drawDialog(s.Dialog)
	}
	r.drawStatus(s.Status)
	b.Show()
}

func (r *Renderer) drawTable(s Scene) {
	th := r.opts.Theme
	nh := s.Table.NumHead()
	if nh < r.height {
		r.drawRule(nh)
	}

	for y, row := range r.lines {
		if row < 0 {
			continue
		}
		for j, c := range s.Table.Row(row).Cells {
			at := table.Coord{Row: row, Col: j}
			x, w := r.xs[j], r.widths[j]

			if s.Edit != nil && s.Edit.At == at {
				r.drawInput(x, y, w, s.Edit.Input)
			} else {
				r.putString(x, y, core.Pad(cellText(c), w), r.cellStyle(s, at, c))
			}
			r.backend.SetCell(x+w, y, core.NewStyledCell('│', th.Rule))
		}
	}
}

// cellStyle picks the style of a cell. Pending beats error, and the
// cursor shows on top of either.
func (r *Renderer) cellStyle(s Scene, at table.Coord, c *table.Cell) core.Style {
	th := r.opts.Theme
	st := th.Cell
	switch {
	case c.Header:
		st = th.Header
	case c.Has(table.MarkPending):
		st = th.Pending
	case c.Has(table.MarkError):
		st = th.Error
	}
	if s.Edit == nil && s.Cursor == at {
		st.Attributes |= th.Cursor.Attributes
		if !th.Cursor.Background.IsDefault() {
			st.Background = th.Cursor.Background
		}
	}
	return st
}

func (r *Renderer) drawRule(y int) {
	st := r.opts.Theme.Rule
	for x := 0; x < r.width; x++ {
		ch := '─'
		for j, left := range r.xs {
			if x == left+r.widths[j] {
				ch = '┼'
				break
			}
		}
		r.backend.SetCell(x, y, core.NewStyledCell(ch, st))
	}
}

// drawInput draws an editor over its cell. A text input scrolls so its
// cursor stays inside the cell, and the terminal cursor is placed on it.
func (r *Renderer) drawInput(x, y, w int, in *editor.Input) {
	st := r.opts.Theme.Editing
	if in.Kind == editor.KindSelect {
		label := core.Truncate(in.Label(), w-1, "…")
		r.putString(x, y, core.Pad(label, w-1)+"▾", st)
		return
	}

	runes := []rune(in.Value())
	start := max(in.Cursor()-(w-1), 0)
	r.putString(x, y, core.Pad(string(runes[start:]), w), st)
	r.backend.ShowCursor(x+core.StringWidth(string(runes[start:in.Cursor()])), y)
}

func (r *Renderer) drawMenu(m *menu.Menu) {
	th := r.opts.Theme
	entries := menuLines(m)
	if len(entries) == 0 {
		return
	}

	inner := 0
	for _, e := range entries {
		inner = max(inner, core.StringWidth(e.Icon)+1+core.StringWidth(e.Label))
	}
	inner += 2

	t := m.Target()
	box := r.place(t.X, t.Y+1, inner+2, len(entries)+2)
	r.drawBox(box, th.Menu)
	r.menuBox = box

	focused := m.Focused()
	for i, e := range entries {
		y := box.Top + 1 + i
		if e.IsSeparator() {
			r.menuIDs = append(r.menuIDs, "")
			r.putString(box.Left+1, y, strings.Repeat("─", box.Width()-2), th.Menu)
			continue
		}
		r.menuIDs = append(r.menuIDs, e.ID)
		st := th.Menu
		if e == focused {
			st = th.MenuFocus
		}
		r.putString(box.Left+1, y, core.Pad(" "+e.Icon+" "+e.Label, box.Width()-2), st)
	}
}

// drawCalendar draws the month grid below the edited cell.
func (r *Renderer) drawCalendar(s Scene) {
	th := r.opts.Theme
	p := s.Picker
	month := p.Month()

	x, y := 0, 0
	if s.Edit != nil {
		if cb, ok := r.cellBox(s.Edit.At); ok {
			x, y = cb.Left, cb.Bottom
		}
	}
	box := r.place(x, y, calInner+2, len(month.Weeks)+4)
	r.drawBox(box, th.Menu)
	r.calBox, r.calRows = box, len(month.Weeks)

	left := box.Left + 1
	title := core.Truncate(month.Title, calInner-6, "…")
	pad := (calInner - core.StringWidth(title)) / 2
	r.putString(left, box.Top+1, core.Pad("‹"+strings.Repeat(" ", pad-1)+title, calInner-1)+"›", th.Header)

	var wd strings.Builder
	for _, d := range calendar.Weekdays {
		wd.WriteString(" " + d)
	}
	r.putString(left, box.Top+2, wd.String(), th.Header)

	cur := p.Cursor()
	for w, week := range month.Weeks {
		for i, d := range week {
			st := th.Menu
			switch {
			case d.Day == cur.Day() && d.Month == int(cur.Month()) && d.Year == cur.Year():
				st = th.DayCursor
			case d.Other:
				st = th.DayOther
			}
			r.putString(left+i*3, box.Top+3+w, fmt.Sprintf("%3d", d.Day), st)
		}
	}
}

func (r *Renderer) drawDialog(d *dialog.Dialog) {
	st := r.opts.Theme.Dialog
	lines := strings.Split(d.Message, "\n")
	hint := "[Enter] OK"
	if d.Kind == dialog.KindConfirm {
		hint = "[y] Yes  [n] No"
	}

	inner := core.StringWidth(hint)
	for _, l := range lines {
		inner = max(inner, core.StringWidth(l))
	}
	inner = min(inner+2, max(r.width-2, 1))
	h := len(lines) + 4

	box := r.place((r.width-inner-2)/2, (r.height-h)/2, inner+2, h)
	r.drawBox(box, st)
	for i, l := range lines {
		r.putString(box.Left+1, box.Top+1+i, core.Pad(" "+l, box.Width()-2), st)
	}
	r.putString(box.Left+1, box.Top+1+len(lines), strings.Repeat(" ", box.Width()-2), st)
	r.putString(box.Left+1, box.Bottom-2, core.Pad(" "+hint, box.Width()-2), st)
}

func (r *Renderer) drawStatus(text string) {
	if r.height == 0 {
		return
	}
	r.putString(0, r.height-1, core.Pad(text, r.width), r.opts.Theme.Status)
}

// drawBox clears rect and draws a single-line border around it.
func (r *Renderer) drawBox(rect core.ScreenRect, st core.Style) {
	if rect.Width() < 2 || rect.Height() < 2 {
		return
	}
	r.backend.Fill(rect, core.NewStyledCell(' ', st))
	top, bottom := rect.Top, rect.Bottom-1
	left, right := rect.Left, rect.Right-1
	for x := left + 1; x < right; x++ {
		r.backend.SetCell(x, top, core.NewStyledCell('─', st))
		r.backend.SetCell(x, bottom, core.NewStyledCell('─', st))
	}
	for y := top + 1; y < bottom; y++ {
		r.backend.SetCell(left, y, core.NewStyledCell('│', st))
		r.backend.SetCell(right, y, core.NewStyledCell('│', st))
	}
	r.backend.SetCell(left, top, core.NewStyledCell('┌', st))
	r.backend.SetCell(right, top, core.NewStyledCell('┐', st))
	r.backend.SetCell(left, bottom, core.NewStyledCell('└', st))
	r.backend.SetCell(right, bottom, core.NewStyledCell('┘', st))
}

// putString writes s from x on line y. Wide runes advance two columns.
func (r *Renderer) putString(x, y int, s string, st core.Style) {
	for _, ch := range s {
		w := core.RuneWidth(ch)
		if w == 0 {
			continue
		}
		r.backend.SetCell(x, y, core.Cell{Rune: ch, Width: w, Style: st})
		x += w
	}
}
