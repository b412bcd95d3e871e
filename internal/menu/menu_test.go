package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/table"
)

func press(m *Menu, k key.Key) bool {
	return m.HandleKey(key.NewSpecialEvent(k, key.ModNone))
}

func TestMenuEntries(t *testing.T) {
	m := New()
	assert.NotEmpty(t, m.ID())
	assert.NotEqual(t, m.ID(), New().ID())

	m.Add("a", "", "Alpha", nil)
	m.Add(SeparatorID, "", "", nil)
	m.AddMenu([]Entry{{ID: "b", Label: "Beta"}, {ID: "c", Label: "Gamma"}})

	require.Len(t, m.Entries(), 4)
	assert.True(t, m.Entries()[1].IsSeparator())
	assert.Equal(t, "Beta", m.Entry("b").Label)
	assert.Nil(t, m.Entry("zzz"))

	m.Hide("b")
	assert.Len(t, m.Visible(), 2)
	m.Show("b")
	assert.Len(t, m.Visible(), 3)

	m.Remove("a")
	assert.Nil(t, m.Entry("a"))
	assert.Len(t, m.Entries(), 3)
}

func TestMenuKeyboard(t *testing.T) {
	var got []Target
	var which []string
	h := func(id string) Handler {
		return func(tg Target) {
			which = append(which, id)
			got = append(got, tg)
		}
	}

	m := New()
	m.Add("one", "", "One", h("one"))
	m.Add("two", "", "Two", h("two"))
	m.Add("three", "", "Three", h("three"))
	m.Hide("two")

	assert.False(t, press(m, key.KeyDown), "closed menu ignores keys")

	target := CellTarget(table.Coord{Row: 2, Col: 1}, 10, 4)
	m.Open(target)
	require.True(t, m.IsOpen())
	assert.Equal(t, "one", m.Focused().ID)

	press(m, key.KeyDown)
	assert.Equal(t, "three", m.Focused().ID, "hidden entries are skipped")
	press(m, key.KeyDown)
	assert.Equal(t, "one", m.Focused().ID, "focus wraps")
	press(m, key.KeyUp)
	assert.Equal(t, "three", m.Focused().ID)

	assert.True(t, press(m, key.KeyEnter))
	assert.False(t, m.IsOpen(), "activation closes the menu")
	assert.Equal(t, []string{"three"}, which)
	assert.Equal(t, target, got[0])

	m.Open(Target{})
	assert.True(t, m.HandleKey(key.NewRuneEvent(' ', key.ModNone)))
	assert.Equal(t, []string{"three", "one"}, which)
	assert.Equal(t, TargetGeneric, got[1].Kind)

	m.Open(target)
	assert.False(t, m.HandleKey(key.NewRuneEvent('x', key.ModNone)))
	assert.True(t, press(m, key.KeyEscape))
	assert.False(t, m.IsOpen())
	assert.Len(t, which, 2)
}

func TestMenuActivate(t *testing.T) {
	ran := 0
	m := New()
	m.Add("x", "", "X", func(Target) { ran++ })

	assert.False(t, m.Activate("x"), "closed menu")
	m.Open(Target{})
	m.Hide("x")
	assert.False(t, m.Activate("x"), "hidden entry")
	assert.Nil(t, m.Focused())
	m.Show("x")
	assert.True(t, m.Activate("x"))
	assert.Equal(t, 1, ran)
}

func TestMenuEmpty(t *testing.T) {
	m := New()
	m.Open(Target{})
	assert.Nil(t, m.Focused())
	assert.False(t, press(m, key.KeyDown))
	assert.True(t, press(m, key.KeyEscape))
}
