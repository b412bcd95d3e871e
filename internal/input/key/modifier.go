package key

import "strings"

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasCtrl reports whether Control is held.
func (m Modifier) HasCtrl() bool { return m.Has(ModCtrl) }

// modifierOrder is the order of the compact form.
var modifierOrder = []struct {
	mod   Modifier
	short string
}{
	{ModCtrl, "C"},
	{ModAlt, "A"},
	{ModMeta, "M"},
	{ModShift, "S"},
}

// String returns the compact form, e.g. "C-S".
func (m Modifier) String() string {
	var parts []string
	for _, o := range modifierOrder {
		if m.Has(o.mod) {
			parts = append(parts, o.short)
		}
	}
	return strings.Join(parts, "-")
}

var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"a":       ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"meta":    ModMeta,
	"m":       ModMeta,
	"cmd":     ModMeta,
	"super":   ModMeta,
}

// ModifierFromName returns the Modifier for a name (case-insensitive),
// or ModNone.
func ModifierFromName(name string) Modifier {
	return modifierNameMap[strings.ToLower(strings.TrimSpace(name))]
}
