package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Key names: "Enter", "Escape", "Tab", "F2", "Space"
//   - With modifiers: "Ctrl+S", "Shift+Tab"
//   - Vim-style: "<C-s>", "<S-Tab>", "<CR>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseParts(strings.Split(spec[1:len(spec)-1], "-"))
	}
	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseParts(strings.Split(spec, "+"))
	}
	return parseKey(spec, ModNone)
}

// parseParts treats every part but the last as a modifier.
func parseParts(parts []string) (Event, error) {
	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods |= mod
	}
	return parseKey(parts[len(parts)-1], mods)
}

func parseKey(part string, mods Modifier) (Event, error) {
	part = strings.TrimSpace(part)
	if part == "" {
		return Event{}, ErrInvalidSpec
	}
	if strings.EqualFold(part, "space") {
		return NewRuneEvent(' ', mods), nil
	}
	if k := FromName(part); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	runes := []rune(part)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, part)
	}
	r := runes[0]
	switch {
	case mods.HasCtrl():
		r = unicode.ToLower(r)
	case unicode.IsUpper(r):
		mods |= ModShift
	}
	return NewRuneEvent(r, mods), nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	e, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return e
}
