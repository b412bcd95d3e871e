package editor

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/input/key"
)

// Kind distinguishes input nodes.
type Kind uint8

const (
	KindText Kind = iota
	KindSelect
)

// Input is the focusable input node of an editing widget. Text inputs
// hold an editable line with a cursor; select inputs hold a choice index.
type Input struct {
	// ID identifies the input, e.g. as a calendar write-back target.
	ID string

	Kind Kind

	// MaxLength bounds the rune length of typed text. A longer value set
	// through SetValue is kept whole.
	MaxLength int

	// Options are the choices of a select input.
	Options []column.Option

	value    []rune
	cursor   int
	selected int
	fallback string
}

// NewTextInput creates a text input holding value. When max > 0 typing
// stops at max runes. The cursor starts at the end.
func NewTextInput(value string, max int) *Input {
	in := &Input{ID: uuid.NewString(), Kind: KindText, MaxLength: max}
	in.SetValue(value)
	return in
}

// NewSelectInput creates a select input preselecting the option whose
// value or label equals current. With no match nothing is selected and
// Value returns current.
func NewSelectInput(opts []column.Option, current string) *Input {
	in := &Input{ID: uuid.NewString(), Kind: KindSelect, Options: opts, selected: -1, fallback: current}
	for i, o := range opts {
		if o.Value == current || o.Label == current {
			in.selected = i
			break
		}
	}
	return in
}

// Value returns the current value.
func (in *Input) Value() string {
	if in.Kind == KindSelect {
		if in.selected < 0 || in.selected >= len(in.Options) {
			return in.fallback
		}
		return in.Options[in.selected].Value
	}
	return string(in.value)
}

// Label returns the text to display.
func (in *Input) Label() string {
	if in.Kind == KindSelect && in.selected >= 0 && in.selected < len(in.Options) {
		return in.Options[in.selected].Label
	}
	return in.Value()
}

// Cursor returns the rune offset of the text cursor.
func (in *Input) Cursor() int { return in.cursor }

// Selected returns the selected option index, or -1.
func (in *Input) Selected() int { return in.selected }

// SetValue replaces a text value, or selects the matching option of a
// select input.
func (in *Input) SetValue(v string) {
	if in.Kind == KindSelect {
		for i, o := range in.Options {
			if o.Value == v {
				in.selected = i
				return
			}
		}
		return
	}
	r := []rune(v)
	in.value = r
	in.cursor = len(r)
}

// HandleKey applies an editing key. It returns false for keys the input
// does not consume.
func (in *Input) HandleKey(ev key.Event) bool {
	if in.Kind == KindSelect {
		return in.handleSelect(ev)
	}

	switch {
	case ev.IsChar():
		if in.MaxLength > 0 && len(in.value) >= in.MaxLength {
			return true
		}
		in.value = append(in.value[:in.cursor], append([]rune{ev.Rune}, in.value[in.cursor:]...)...)
		in.cursor++
	case ev.Key == key.KeyBackspace:
		if in.cursor > 0 {
			in.value = append(in.value[:in.cursor-1], in.value[in.cursor:]...)
			in.cursor--
		}
	case ev.Key == key.KeyDelete:
		if in.cursor < len(in.value) {
			in.value = append(in.value[:in.cursor], in.value[in.cursor+1:]...)
		}
	case ev.Key == key.KeyLeft:
		if in.cursor > 0 {
			in.cursor--
		}
	case ev.Key == key.KeyRight:
		if in.cursor < len(in.value) {
			in.cursor++
		}
	case ev.Key == key.KeyHome:
		in.cursor = 0
	case ev.Key == key.KeyEnd:
		in.cursor = len(in.value)
	default:
		return false
	}
	return true
}

func (in *Input) handleSelect(ev key.Event) bool {
	n := len(in.Options)
	if n == 0 {
		return false
	}
	switch {
	case ev.Key == key.KeyLeft:
		if in.selected <= 0 {
			in.selected = n - 1
		} else {
			in.selected--
		}
	case ev.Key == key.KeyRight, ev.IsRune() && ev.Rune == ' ':
		in.selected = (in.selected + 1) % n
	case ev.Key == key.KeyHome:
		in.selected = 0
	case ev.Key == key.KeyEnd:
		in.selected = n - 1
	default:
		return false
	}
	return true
}

// Width returns the display length of the value in runes.
func (in *Input) Width() int {
	return utf8.RuneCountInString(in.Label())
}
