package key

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Event
	}{
		{"q", NewRuneEvent('q', ModNone)},
		{"Q", NewRuneEvent('Q', ModShift)},
		{"Enter", NewSpecialEvent(KeyEnter, ModNone)},
		{"<CR>", NewSpecialEvent(KeyEnter, ModNone)},
		{"<Esc>", NewSpecialEvent(KeyEscape, ModNone)},
		{"F2", NewSpecialEvent(KeyF2, ModNone)},
		{"Ctrl+S", NewRuneEvent('s', ModCtrl)},
		{"<C-s>", NewRuneEvent('s', ModCtrl)},
		{"Shift+Tab", NewSpecialEvent(KeyTab, ModShift)},
		{"<S-Tab>", NewSpecialEvent(KeyTab, ModShift)},
		{"space", NewRuneEvent(' ', ModNone)},
		{"+", NewRuneEvent('+', ModNone)},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.spec, err)
			}
			if !got.Equals(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("  "); !errors.Is(err, ErrEmptySpec) {
		t.Errorf("Parse(blank) error = %v, want ErrEmptySpec", err)
	}
	for _, spec := range []string{"Hyper+x", "<X-a>", "Ctrl+", "nokey"} {
		if _, err := Parse(spec); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidSpec", spec, err)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on an invalid spec")
		}
	}()
	MustParse("<Q-q>")
}

func TestEventString(t *testing.T) {
	tests := []struct {
		e    Event
		want string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('A', ModShift), "A"},
		{NewRuneEvent('s', ModCtrl), "C-s"},
		{NewRuneEvent(' ', ModNone), "Space"},
		{NewSpecialEvent(KeyTab, ModShift), "S-Tab"},
		{NewSpecialEvent(KeyEscape, ModNone), "Esc"},
		{NewSpecialEvent(KeyF12, ModCtrl|ModAlt), "C-A-F12"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEventPredicates(t *testing.T) {
	if !NewRuneEvent('x', ModShift).IsChar() {
		t.Error("shifted rune should be a char")
	}
	if NewRuneEvent('x', ModCtrl).IsChar() {
		t.Error("ctrl rune should not be a char")
	}
	if !NewSpecialEvent(KeyTab, ModShift).Is(KeyTab, ModShift) {
		t.Error("Is(Tab, Shift) = false")
	}
	if NewSpecialEvent(KeyTab, ModShift).Is(KeyTab, ModNone) {
		t.Error("Is(Tab, None) = true for Shift+Tab")
	}
	if !KeyLeft.IsArrowKey() || KeyHome.IsArrowKey() {
		t.Error("IsArrowKey mismatch")
	}
	if !KeyF5.IsFunctionKey() {
		t.Error("F5 should be a function key")
	}
	if got := Key(200).String(); got != "Key(200)" {
		t.Errorf("Key(200).String() = %q", got)
	}
}

func TestMatches(t *testing.T) {
	if !NewRuneEvent('s', ModCtrl).Matches("Ctrl+S") {
		t.Error("C-s should match Ctrl+S")
	}
	if !NewRuneEvent('Q', ModShift).Matches("Q") {
		t.Error("Q should match Q")
	}
	if NewRuneEvent('q', ModNone).Matches("Ctrl+Q") {
		t.Error("q should not match Ctrl+Q")
	}
	if NewRuneEvent('q', ModNone).Matches("Bogus+") {
		t.Error("invalid spec should not match")
	}
	if got := NewRuneEvent('Q', ModShift).Fold(); !got.Equals(NewRuneEvent('q', ModNone)) {
		t.Errorf("Fold() = %s, want q", got)
	}
}

func TestFromName(t *testing.T) {
	if FromName(" PgDn ") != KeyPageDown {
		t.Error("FromName(PgDn) mismatch")
	}
	if FromName("nothing") != KeyNone {
		t.Error("FromName(nothing) should be KeyNone")
	}
	if ModifierFromName("CONTROL") != ModCtrl {
		t.Error("ModifierFromName(CONTROL) mismatch")
	}
	if got := (ModCtrl | ModShift).String(); got != "C-S" {
		t.Errorf("Modifier.String() = %q", got)
	}
}
