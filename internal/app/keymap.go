package app

import (
	"github.com/dshills/gridstorm/internal/input/key"
)

// Actions run by key bindings while no editor, menu, picker or dialog
// takes the key.
const (
	ActionOpen      = "cell.open"
	ActionNext      = "cursor.next"
	ActionPrev      = "cursor.prev"
	ActionUp        = "cursor.up"
	ActionDown      = "cursor.down"
	ActionMenu      = "menu.open"
	ActionInsertRow = "row.insert"
	ActionCopyRow   = "row.copy"
	ActionDeleteRow = "row.delete"
	ActionSave      = "file.save"
	ActionQuit      = "app.quit"
)

// Binding maps a key to an action.
type Binding struct {
	// Keys uses the key parser syntax: "q", "Ctrl+S", "<S-Tab>".
	Keys   string
	Action string
}

// DefaultBindings returns the grid key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		{Keys: "Enter", Action: ActionOpen},
		{Keys: "F2", Action: ActionOpen},
		{Keys: "Tab", Action: ActionNext},
		{Keys: "Right", Action: ActionNext},
		{Keys: "Shift+Tab", Action: ActionPrev},
		{Keys: "Left", Action: ActionPrev},
		{Keys: "Up", Action: ActionUp},
		{Keys: "Down", Action: ActionDown},
		{Keys: "m", Action: ActionMenu},
		{Keys: "i", Action: ActionInsertRow},
		{Keys: "c", Action: ActionCopyRow},
		{Keys: "Ctrl+D", Action: ActionDeleteRow},
		{Keys: "Ctrl+S", Action: ActionSave},
		{Keys: "q", Action: ActionQuit},
	}
}

// lookup returns the action bound to ev, or "".
func lookup(bindings []Binding, ev key.Event) string {
	for _, b := range bindings {
		if ev.Matches(b.Keys) {
			return b.Action
		}
	}
	return ""
}
