package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/dialog"
	"github.com/dshills/gridstorm/internal/editor"
	"github.com/dshills/gridstorm/internal/menu"
	"github.com/dshills/gridstorm/internal/renderer/backend"
	"github.com/dshills/gridstorm/internal/renderer/core"
	"github.com/dshills/gridstorm/internal/table"
)

func newTestRenderer(w, h int) (*Renderer, *backend.NullBackend) {
	b := backend.NewNullBackend(w, h)
	b.Init()
	return New(b, DefaultOptions()), b
}

func fruitTable() *table.Table {
	return table.New("t",
		[][]string{{"Name", "Qty"}},
		[][]string{{"apple", "1"}, {"kiwi", "22"}},
	)
}

func TestDrawTable(t *testing.T) {
	r, b := newTestRenderer(40, 10)
	r.Draw(Scene{Table: fruitTable(), Cursor: table.Coord{Row: 1, Col: 0}, Status: "ready"})

	want := []string{
		"Name │Qty│",
		"─────┼───┼",
		"apple│1  │",
		"kiwi │22 │",
	}
	for y, prefix := range want {
		if got := b.Line(y); !strings.HasPrefix(got, prefix) {
			t.Errorf("line %d = %q, want prefix %q", y, got, prefix)
		}
	}
	if got := b.Line(9); !strings.HasPrefix(got, "ready") {
		t.Errorf("status line = %q", got)
	}
	if !b.GetCell(0, 2).Style.Attributes.Has(core.AttrReverse) {
		t.Error("cursor cell should be reversed")
	}
	if b.GetCell(0, 3).Style.Attributes.Has(core.AttrReverse) {
		t.Error("other cells should not be reversed")
	}
	if !b.GetCell(0, 0).Style.Attributes.Has(core.AttrBold) {
		t.Error("header should be bold")
	}
}

func TestColumnWidthBounds(t *testing.T) {
	b := backend.NewNullBackend(40, 6)
	b.Init()
	r := New(b, Options{MaxColWidth: 4, MinColWidth: 2, Theme: DefaultTheme()})

	tbl := table.New("t", nil, [][]string{{"abcdefgh", "x"}})
	r.Draw(Scene{Table: tbl})

	if got := b.Line(1); !strings.HasPrefix(got, "abcd│x │") {
		t.Errorf("line = %q", got)
	}
}

func TestCellAt(t *testing.T) {
	r, _ := newTestRenderer(40, 10)
	r.Draw(Scene{Table: fruitTable()})

	tests := []struct {
		x, y int
		want table.Coord
		ok   bool
	}{
		{0, 0, table.Coord{Row: 0, Col: 0}, true},
		{0, 2, table.Coord{Row: 1, Col: 0}, true},
		{4, 2, table.Coord{Row: 1, Col: 0}, true},
		{5, 2, table.Coord{}, false}, // separator
		{6, 3, table.Coord{Row: 2, Col: 1}, true},
		{0, 1, table.Coord{}, false}, // rule
		{30, 2, table.Coord{}, false},
		{0, 4, table.Coord{}, false},
	}
	for _, tt := range tests {
		got, ok := r.CellAt(tt.x, tt.y)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CellAt(%d,%d) = %v, %v; want %v, %v", tt.x, tt.y, got, ok, tt.want, tt.ok)
		}
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	r, b := newTestRenderer(20, 5)
	tbl := table.New("t", [][]string{{"n"}},
		[][]string{{"r1"}, {"r2"}, {"r3"}, {"r4"}, {"r5"}})

	r.Draw(Scene{Table: tbl, Cursor: table.Coord{Row: 5, Col: 0}})

	if got := b.Line(0); !strings.HasPrefix(got, "n") {
		t.Errorf("header should stay, got %q", got)
	}
	if got := b.Line(2); !strings.HasPrefix(got, "r4") {
		t.Errorf("line 2 = %q", got)
	}
	if got, ok := r.CellAt(0, 3); !ok || got.Row != 5 {
		t.Errorf("CellAt(0,3) = %v, %v", got, ok)
	}

	r.Draw(Scene{Table: tbl, Cursor: table.Coord{Row: 1, Col: 0}})
	if got := b.Line(2); !strings.HasPrefix(got, "r1") {
		t.Errorf("after scrolling back line 2 = %q", got)
	}
}

func TestDrawTextInput(t *testing.T) {
	r, b := newTestRenderer(40, 10)
	in := editor.NewTextInput("hello world", 0)
	r.Draw(Scene{Table: fruitTable(), Edit: &Edit{At: table.Coord{Row: 1, Col: 0}, Input: in}})

	if got := b.Line(2); !strings.HasPrefix(got, "hello world │1") {
		t.Errorf("line = %q", got)
	}
	x, y, visible := b.CursorPosition()
	if !visible || x != 11 || y != 2 {
		t.Errorf("cursor = (%d,%d,%v)", x, y, visible)
	}
	if st := b.GetCell(0, 2).Style; st != DefaultTheme().Editing {
		t.Errorf("editing style = %+v", st)
	}
}

func TestDrawTextInputScrolls(t *testing.T) {
	b := backend.NewNullBackend(40, 6)
	b.Init()
	r := New(b, Options{MaxColWidth: 5, MinColWidth: 1, Theme: DefaultTheme()})

	in := editor.NewTextInput("abcdefghij", 0)
	r.Draw(Scene{Table: table.New("t", nil, [][]string{{"x"}}), Edit: &Edit{Input: in}})

	if got := b.Line(1); !strings.HasPrefix(got, "ghij │") {
		t.Errorf("line = %q", got)
	}
	if x, _, _ := b.CursorPosition(); x != 4 {
		t.Errorf("cursor x = %d", x)
	}
}

func TestDrawMarks(t *testing.T) {
	r, b := newTestRenderer(40, 10)
	tbl := fruitTable()
	tbl.Cell(table.Coord{Row: 1, Col: 1}).Mark(table.MarkError)
	tbl.Cell(table.Coord{Row: 2, Col: 1}).Mark(table.MarkPending)
	tbl.Cell(table.Coord{Row: 2, Col: 1}).Mark(table.MarkError)

	r.Draw(Scene{Table: tbl})
	th := DefaultTheme()
	if st := b.GetCell(6, 2).Style; st != th.Error {
		t.Errorf("error style = %+v", st)
	}
	if st := b.GetCell(6, 3).Style; st != th.Pending {
		t.Errorf("pending should win over error, got %+v", st)
	}
}

func TestDrawMenu(t *testing.T) {
	r, b := newTestRenderer(40, 12)
	m := menu.New()
	m.Add("ins", "+", "Insert", nil)
	m.AddSeparator()
	m.Add("del", "-", "Delete", nil)
	m.Open(menu.Target{X: 2, Y: 2})

	r.Draw(Scene{Table: fruitTable(), Menu: m})

	if got := b.Line(3); !strings.HasPrefix(got[2:], "┌") {
		t.Errorf("menu top = %q", got)
	}
	if got := b.Line(4); !strings.Contains(got, "+ Insert") {
		t.Errorf("menu entry = %q", got)
	}
	if !b.GetCell(3, 4).Style.Attributes.Has(core.AttrReverse) {
		t.Error("focused entry should be reversed")
	}

	tests := []struct {
		x, y   int
		id     string
		inside bool
	}{
		{3, 4, "ins", true},
		{3, 5, "", true},
		{3, 6, "del", true},
		{2, 3, "", true},
		{30, 4, "", false},
	}
	for _, tt := range tests {
		id, inside := r.MenuEntryAt(tt.x, tt.y)
		if id != tt.id || inside != tt.inside {
			t.Errorf("MenuEntryAt(%d,%d) = %q, %v", tt.x, tt.y, id, inside)
		}
	}
}

func TestMenuLinesDropsStraySeparators(t *testing.T) {
	m := menu.New()
	m.AddSeparator()
	m.Add("a", "", "A", nil)
	m.AddSeparator()
	m.Add("b", "", "B", nil)
	m.AddSeparator()
	m.Hide("b")

	lines := menuLines(m)
	if len(lines) != 1 || lines[0].ID != "a" {
		t.Errorf("menuLines = %d entries", len(lines))
	}
}

func TestMenuClosedHitsNothing(t *testing.T) {
	r, _ := newTestRenderer(40, 12)
	m := menu.New()
	m.Add("ins", "+", "Insert", nil)

	r.Draw(Scene{Table: fruitTable(), Menu: m})
	if _, inside := r.MenuEntryAt(1, 1); inside {
		t.Error("closed menu should not be hit")
	}
}

func TestDrawDialog(t *testing.T) {
	r, b := newTestRenderer(40, 12)
	s := dialog.NewStack()
	s.Confirm("Delete row?", nil, nil)

	r.Draw(Scene{Table: fruitTable(), Dialog: s.Top()})

	var msg, hint bool
	for y := 0; y < 12; y++ {
		line := b.Line(y)
		msg = msg || strings.Contains(line, "Delete row?")
		hint = hint || strings.Contains(line, "[y] Yes")
	}
	if !msg || !hint {
		t.Errorf("dialog not drawn: message %v, hint %v", msg, hint)
	}
}

func TestDrawCalendar(t *testing.T) {
	r, b := newTestRenderer(40, 12)
	p := calendar.NewPicker(calendar.FormatDE, calendar.WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	}))
	p.Open(calendar.Request{Seed: "15.03.2024"})

	r.Draw(Scene{Picker: p})

	if got := b.Line(2); !strings.Contains(got, "Mo Tu We Th Fr Sa Su") {
		t.Errorf("weekday line = %q", got)
	}
	if got := b.Line(5); !strings.Contains(got, " 15") {
		t.Errorf("third week = %q", got)
	}
	if !b.GetCell(14, 5).Style.Attributes.Has(core.AttrReverse) {
		t.Error("cursor day should be reversed")
	}

	tests := []struct {
		x, y   int
		want   CalendarHit
		inside bool
	}{
		{14, 5, CalendarHit{Day: true, Week: 2, Weekday: 4}, true},
		{1, 1, CalendarHit{Nav: -1}, true},
		{21, 1, CalendarHit{Nav: 1}, true},
		{10, 1, CalendarHit{}, true},
		{30, 5, CalendarHit{}, false},
	}
	for _, tt := range tests {
		got, inside := r.CalendarAt(tt.x, tt.y)
		if got != tt.want || inside != tt.inside {
			t.Errorf("CalendarAt(%d,%d) = %+v, %v", tt.x, tt.y, got, inside)
		}
	}
}
