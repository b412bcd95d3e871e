package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/input/key"
	screen "github.com/dshills/gridstorm/internal/renderer/backend"
	"github.com/dshills/gridstorm/internal/table"
)

const document = `<html><body>
<table id="fruit">
<thead><tr><th>Name</th><th>Qty</th></tr></thead>
<tbody>
<tr><td>apple</td><td>1</td></tr>
<tr><td>kiwi</td><td>2</td></tr>
</tbody>
</table>
</body></html>`

const columns = `
[[column]]
name = "name"
type = "text"
editable = true

[[column]]
name = "qty"
type = "number"
editable = true
`

func newApp(t *testing.T) (*Application, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fruit.html")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))
	dict := filepath.Join(dir, "columns.toml")
	require.NoError(t, os.WriteFile(dict, []byte(columns), 0o644))

	cfg := config.Default()
	cfg.Table.Path = path
	cfg.Table.ID = "fruit"
	cfg.Dictionary.Path = dict

	a, err := New(cfg)
	require.NoError(t, err)
	return a, path
}

func keyEv(ev key.Event) screen.Event {
	return screen.Event{Type: screen.EventKey, Key: ev}
}

func special(k key.Key) screen.Event { return keyEv(key.NewSpecialEvent(k, key.ModNone)) }
func char(r rune) screen.Event       { return keyEv(key.NewRuneEvent(r, key.ModNone)) }

func click(b screen.MouseButton, x, y int) screen.Event {
	return screen.Event{Type: screen.EventMouse, Button: b, X: x, Y: y}
}

// play runs a on a null backend fed with events. The backend is closed
// behind the events, so Run returns once they are consumed.
func play(t *testing.T, a *Application, events ...screen.Event) error {
	t.Helper()
	b := screen.NewNullBackend(80, 24)
	for _, ev := range events {
		b.PostEvent(ev)
	}
	b.Shutdown()
	require.NoError(t, a.SetBackend(b))
	return a.Run()
}

func cellAt(a *Application, row, col int) *table.Cell {
	return a.Table().Cell(table.Coord{Row: row, Col: col})
}

func TestEditAndQuit(t *testing.T) {
	a, _ := newApp(t)

	err := play(t, a,
		special(key.KeyEnter), // open (1,0)
		char('x'),
		special(key.KeyEnter),  // commit, opens (1,1)
		special(key.KeyEscape), // leave (1,1) untouched
		char('q'),
		char('y'), // confirm quitting without saving
		char('i'), // never reached
	)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Equal(t, "applex", cellAt(a, 1, 0).HTML)
	assert.Equal(t, "kiwi", cellAt(a, 2, 0).HTML)
	assert.Equal(t, 2, a.Table().NumBody())
	assert.True(t, a.Modified())
}

func TestQuitDeclined(t *testing.T) {
	a, _ := newApp(t)

	err := play(t, a,
		special(key.KeyEnter),
		char('x'),
		special(key.KeyEnter),
		special(key.KeyEscape),
		char('q'),
		char('n'),
		char('i'), // insert a row above the cursor row
	)
	assert.ErrorIs(t, err, ErrQuit, "a closed backend ends the loop")
	assert.Equal(t, 3, a.Table().NumBody())
	assert.Equal(t, "", cellAt(a, 1, 0).HTML)
	assert.Equal(t, "applex", cellAt(a, 2, 0).HTML)
}

func TestQuitUnmodified(t *testing.T) {
	a, _ := newApp(t)

	err := play(t, a, char('q'), char('i'))
	assert.ErrorIs(t, err, ErrQuit)
	assert.Equal(t, 2, a.Table().NumBody())
}

func TestSave(t *testing.T) {
	a, path := newApp(t)

	err := play(t, a,
		special(key.KeyEnter),
		char('x'),
		special(key.KeyEnter),
		special(key.KeyEscape),
		keyEv(key.NewRuneEvent('s', key.ModCtrl)),
	)
	assert.ErrorIs(t, err, ErrQuit)
	assert.False(t, a.Modified())

	got, err := LoadTable(path, "fruit")
	require.NoError(t, err)
	assert.Equal(t, "applex", got.Cell(table.Coord{Row: 1, Col: 0}).HTML)
	assert.Equal(t, "Qty", got.Cell(table.Coord{Row: 0, Col: 1}).HTML)
}

func TestValidationRejects(t *testing.T) {
	a, _ := newApp(t)

	err := play(t, a,
		special(key.KeyRight), // cursor to (1,1)
		special(key.KeyEnter),
		char('a'),
		special(key.KeyEnter), // "1a" is rejected
	)
	assert.ErrorIs(t, err, ErrQuit)

	c := cellAt(a, 1, 1)
	assert.Equal(t, "1", c.HTML)
	assert.True(t, c.Has(table.MarkError))
	require.Equal(t, 1, a.dialogs.Len())
	assert.Equal(t, "Please enter a valid number", a.dialogs.Top().Message)
	require.NotNil(t, a.Grid().Session(), "the cell is reopened")
	assert.Equal(t, table.Coord{Row: 1, Col: 1}, a.Grid().Session().Coord())
}

func TestMouseEdit(t *testing.T) {
	a, _ := newApp(t)

	// header on line 0, rule on line 1, body rows from line 2
	err := play(t, a,
		click(screen.MouseLeft, 1, 3),
		char('s'),
		special(key.KeyEnter),
	)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Equal(t, "kiwis", cellAt(a, 2, 0).HTML)
}

func TestContextMenuCopyRow(t *testing.T) {
	a, _ := newApp(t)

	// the menu opens one line below the click: entries from line 4
	err := play(t, a,
		click(screen.MouseRight, 1, 2),
		click(screen.MouseLeft, 3, 5),
	)
	assert.ErrorIs(t, err, ErrQuit)
	require.Equal(t, 3, a.Table().NumBody())
	assert.Equal(t, "apple", cellAt(a, 1, 0).HTML)
	assert.Equal(t, "apple", cellAt(a, 2, 0).HTML)
	assert.Equal(t, "kiwi", cellAt(a, 3, 0).HTML)
	assert.False(t, a.Grid().Menu().IsOpen())
}

func TestDeleteRowConfirmed(t *testing.T) {
	a, _ := newApp(t)

	err := play(t, a,
		keyEv(key.NewRuneEvent('d', key.ModCtrl)),
		char('n'),
		keyEv(key.NewRuneEvent('d', key.ModCtrl)),
		char('y'),
	)
	assert.ErrorIs(t, err, ErrQuit)
	require.Equal(t, 1, a.Table().NumBody())
	assert.Equal(t, "kiwi", cellAt(a, 1, 0).HTML)
}

func TestContextMenuClosesOnOutsideClick(t *testing.T) {
	a, _ := newApp(t)

	err := play(t, a,
		click(screen.MouseRight, 1, 2),
		click(screen.MouseLeft, 70, 20),
	)
	assert.ErrorIs(t, err, ErrQuit)
	assert.False(t, a.Grid().Menu().IsOpen())
	assert.Nil(t, a.Grid().Session(), "the closing click does not open a cell")
}

func TestInitErrors(t *testing.T) {
	_, err := New(config.Default())
	assert.ErrorIs(t, err, ErrNoTable)

	cfg := config.Default()
	cfg.Table.Path = filepath.Join(t.TempDir(), "missing.html")
	_, err = New(cfg)
	var ie *InitError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "table", ie.Component)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "load", fe.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunWithoutBackend(t *testing.T) {
	a, _ := newApp(t)
	assert.ErrorIs(t, a.Run(), ErrNoBackend)
	a.Shutdown()
	a.Shutdown()
}

func TestSaveWithoutPath(t *testing.T) {
	a, _ := newApp(t)
	a.cfg.Table.Path = ""
	assert.ErrorIs(t, a.Save(), ErrNoFilePath)
}

func TestBindings(t *testing.T) {
	tests := []struct {
		ev   key.Event
		want string
	}{
		{key.NewSpecialEvent(key.KeyEnter, key.ModNone), ActionOpen},
		{key.NewSpecialEvent(key.KeyTab, key.ModShift), ActionPrev},
		{key.NewSpecialEvent(key.KeyTab, key.ModNone), ActionNext},
		{key.NewRuneEvent('s', key.ModCtrl), ActionSave},
		{key.NewRuneEvent('q', key.ModNone), ActionQuit},
		{key.NewRuneEvent('z', key.ModNone), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lookup(DefaultBindings(), tt.ev), tt.ev.String())
	}
}
