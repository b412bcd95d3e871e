package key

import "unicode"

// Event represents a single key press.
type Event struct {
	Key       Key
	Rune      rune
	Modifiers Modifier
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character without Ctrl,
// Alt or Meta.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) && e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0
}

// Is reports whether e is the special key k with exactly mods held.
func (e Event) Is(k Key, mods Modifier) bool {
	return e.Key == k && e.Modifiers == mods
}

// String returns the canonical form: modifiers then key, hyphen-joined.
// Shift is implied by the character for rune events.
// Examples: "a", "C-s", "S-Tab", "Enter", "Space".
func (e Event) String() string {
	mods := e.Modifiers
	if e.IsRune() {
		mods &^= ModShift
	}

	name := e.Key.String()
	if e.Key == KeyRune {
		name = string(e.Rune)
		if e.Rune == ' ' {
			name = "Space"
		}
	}
	if m := mods.String(); m != "" {
		return m + "-" + name
	}
	return name
}

// Equals returns true if two events represent the same key press.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key && e.Rune == other.Rune && e.Modifiers == other.Modifiers
}

// Matches checks if this event matches a key specification string.
// Rune events ignore Shift, which is carried by the character.
func (e Event) Matches(spec string) bool {
	want, err := Parse(spec)
	if err != nil {
		return false
	}
	if e.IsRune() && want.IsRune() {
		return e.Rune == want.Rune &&
			e.Modifiers&^ModShift == want.Modifiers&^ModShift
	}
	return e.Equals(want)
}

// Fold lower-cases a rune event so bindings match regardless of case.
func (e Event) Fold() Event {
	if e.IsRune() {
		e.Rune = unicode.ToLower(e.Rune)
		e.Modifiers &^= ModShift
	}
	return e
}
