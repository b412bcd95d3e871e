package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
)

// mockHost records the calls a widget makes.
type mockHost struct {
	commits  []string
	moves    []nav.Move
	cancels  int
	calendar []calendar.Request
}

func (h *mockHost) Commit(value string, next nav.Move) {
	h.commits = append(h.commits, value)
	h.moves = append(h.moves, next)
}

func (h *mockHost) Cancel(next nav.Move) {
	h.cancels++
	h.moves = append(h.moves, next)
}

func (h *mockHost) Calendar(req calendar.Request) {
	h.calendar = append(h.calendar, req)
}

func typeText(in *Input, s string) {
	for _, r := range s {
		in.HandleKey(key.NewRuneEvent(r, key.ModNone))
	}
}

func TestTextWidget(t *testing.T) {
	host := &mockHost{}
	cell := table.NewCell("<b>Tom</b> &amp; Jerry")
	w := NewRegistry().Create(cell, column.Default(), host)
	require.IsType(t, &TextWidget{}, w)

	assert.Equal(t, "<b>Tom</b> &amp; Jerry", w.Snapshot())
	assert.True(t, cell.Has(table.MarkEditing))
	assert.Equal(t, "Tom & Jerry", w.Input().Value())
	assert.False(t, w.Changed())

	typeText(w.Input(), "!")
	assert.True(t, w.Changed())

	w.Commit(nav.Tab)
	assert.Equal(t, []string{"Tom & Jerry!"}, host.commits)
	assert.Equal(t, []nav.Move{nav.Tab}, host.moves)

	w.Cancel(nav.None)
	assert.Equal(t, 1, host.cancels)
}

func TestTextInputEditing(t *testing.T) {
	in := NewTextInput("abc", 5)
	assert.Equal(t, 3, in.Cursor())

	in.HandleKey(key.NewSpecialEvent(key.KeyHome, key.ModNone))
	typeText(in, "x")
	assert.Equal(t, "xabc", in.Value())

	in.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModNone))
	in.HandleKey(key.NewSpecialEvent(key.KeyDelete, key.ModNone))
	assert.Equal(t, "xac", in.Value())

	in.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	assert.Equal(t, "xc", in.Value())
	assert.Equal(t, 1, in.Cursor())

	in.HandleKey(key.NewSpecialEvent(key.KeyEnd, key.ModNone))
	typeText(in, "12345")
	assert.Equal(t, "xc123", in.Value(), "input stops at max length")

	in.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	assert.Equal(t, 4, in.Cursor())

	assert.False(t, in.HandleKey(key.NewSpecialEvent(key.KeyF5, key.ModNone)))
	assert.False(t, in.HandleKey(key.NewRuneEvent('s', key.ModCtrl)))

	in.SetValue("abcdefgh")
	assert.Equal(t, "abcdefgh", in.Value(), "a set value is not cut")
	typeText(in, "i")
	assert.Equal(t, "abcdefgh", in.Value())
	in.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	assert.Equal(t, "abcdefg", in.Value())
}

func TestTextWidgetKeepsLongValue(t *testing.T) {
	long := strings.Repeat("x", column.DefaultMaxLength+18)
	w := NewText(table.NewCell(long), column.Default(), &mockHost{})

	assert.Equal(t, long, w.Input().Value())
	assert.False(t, w.Changed())
	assert.Equal(t, len(long), w.Input().Cursor())
}

func TestTextInputUnicode(t *testing.T) {
	in := NewTextInput("größe", 0)
	in.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	assert.Equal(t, "größ", in.Value())
	assert.Equal(t, 4, in.Width())
}

func TestSelectWidget(t *testing.T) {
	host := &mockHost{}
	rule := column.Rule{Type: column.TypeSelect, Editable: true, Options: []string{"y|Yes", "n|No", "m|Maybe"}}
	cell := table.NewCell("No")

	w := NewRegistry().Create(cell, rule, host)
	require.IsType(t, &SelectWidget{}, w)
	in := w.Input()

	assert.Equal(t, 1, in.Selected())
	assert.Equal(t, "n", in.Value())
	assert.Equal(t, "No", in.Label())
	assert.False(t, w.Changed())

	in.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModNone))
	assert.Equal(t, "m", in.Value())
	in.HandleKey(key.NewRuneEvent(' ', key.ModNone))
	assert.Equal(t, "y", in.Value())
	in.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	assert.Equal(t, "m", in.Value())
	in.HandleKey(key.NewSpecialEvent(key.KeyHome, key.ModNone))
	assert.Equal(t, "y", in.Value())
	assert.False(t, in.HandleKey(key.NewRuneEvent('q', key.ModNone)))

	w.Commit(nav.Enter)
	assert.Equal(t, []string{"y"}, host.commits)
}

func TestSelectNoMatch(t *testing.T) {
	in := NewSelectInput([]column.Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}, "zzz")
	assert.Equal(t, -1, in.Selected())
	assert.Equal(t, "zzz", in.Value())

	in.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	assert.Equal(t, "b", in.Value())

	in.SetValue("a")
	assert.Equal(t, 0, in.Selected())
	in.SetValue("missing")
	assert.Equal(t, 0, in.Selected())

	empty := NewSelectInput(nil, "x")
	assert.False(t, empty.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModNone)))
}

func TestDateWidgetCalendar(t *testing.T) {
	host := &mockHost{}
	cell := table.NewCell("02.01.2024")
	w := NewRegistry().Create(cell, column.Rule{Type: column.TypeDate, Editable: true}, host)

	clicker, ok := w.(Clicker)
	require.True(t, ok, "date widget handles clicks")
	clicker.Click()

	require.Len(t, host.calendar, 1)
	req := host.calendar[0]
	assert.Equal(t, w.Input().ID, req.InputID)
	assert.Equal(t, "02.01.2024", req.Seed)

	req.WriteBack("15.03.2024")
	assert.Equal(t, "15.03.2024", w.Input().Value())
	assert.True(t, w.Changed())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"date", "select", "text"}, r.Types())

	assert.ErrorIs(t, r.Register("  ", NewText), ErrInvalidType)
	assert.ErrorIs(t, r.Register("money", nil), ErrNilFactory)

	calls := 0
	first := func(cell *table.Cell, rule column.Rule, host Host) Widget {
		calls++
		return NewText(cell, rule, host)
	}
	second := func(cell *table.Cell, rule column.Rule, host Host) Widget {
		calls += 10
		return NewText(cell, rule, host)
	}
	require.NoError(t, r.Register("Money", first))
	require.NoError(t, r.Register("money", second))

	r.Create(table.NewCell("1"), column.Rule{Type: "money"}, &mockHost{})
	assert.Equal(t, 10, calls, "last registration wins")

	w := r.Create(table.NewCell("x"), column.Rule{Type: "unknown"}, &mockHost{})
	assert.IsType(t, &TextWidget{}, w, "unknown types fall back to text")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	require.NoError(t, a.Register(column.TypeText, NewDate))

	assert.IsType(t, &DateWidget{}, a.Create(table.NewCell(""), column.Default(), &mockHost{}))
	assert.IsType(t, &TextWidget{}, b.Create(table.NewCell(""), column.Default(), &mockHost{}))
}

func TestInputIDsUnique(t *testing.T) {
	assert.NotEqual(t, NewTextInput("", 0).ID, NewTextInput("", 0).ID)
}
