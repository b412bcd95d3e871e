package column

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrEmptyType is returned when a dictionary entry names an empty type
// after defaults are applied.
var ErrEmptyType = errors.New("column type is empty")

// Dictionary is the ordered column configuration of one grid.
type Dictionary struct {
	rules []Rule
}

// NewDictionary creates a dictionary from rules, index = cell index.
func NewDictionary(rules ...Rule) *Dictionary {
	d := &Dictionary{rules: make([]Rule, len(rules))}
	copy(d.rules, rules)
	return d
}

// Len returns the number of configured columns.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rules)
}

// Rule returns the rule for cell index i, or Default() when unset.
func (d *Dictionary) Rule(i int) Rule {
	if d == nil || i < 0 || i >= len(d.rules) {
		return Default()
	}
	return d.rules[i]
}

// Rules returns a copy of the configured rules.
func (d *Dictionary) Rules() []Rule {
	if d == nil {
		return nil
	}
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}

// file is the on-disk layout of a dictionary.
type file struct {
	Column []entry `toml:"column"`
}

// entry mirrors Rule with pointer booleans so unset keys take defaults.
type entry struct {
	Name      string   `toml:"name"`
	Type      string   `toml:"type"`
	Editable  *bool    `toml:"editable"`
	Mandatory bool     `toml:"mandatory"`
	Skip      bool     `toml:"skip"`
	MaxLength int      `toml:"max_length"`
	Confirm   bool     `toml:"confirm"`
	Ask       string   `toml:"ask"`
	Options   []string `toml:"options"`
}

// Parse decodes a TOML dictionary:
//
//	[[column]]
//	name = "amount"
//	type = "number"
//	max_length = 10
//
// Entries are merged over Default().
func Parse(data []byte) (*Dictionary, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}

	rules := make([]Rule, 0, len(f.Column))
	for i, e := range f.Column {
		r := Default()
		r.Name = e.Name
		if e.Type != "" {
			r.Type = strings.ToLower(strings.TrimSpace(e.Type))
		}
		if e.Editable != nil {
			r.Editable = *e.Editable
		}
		r.Mandatory = e.Mandatory
		r.Skip = e.Skip
		r.MaxLength = e.MaxLength
		r.Confirm = e.Confirm
		r.Ask = e.Ask
		r.Options = e.Options
		if r.Type == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyType)
		}
		rules = append(rules, r)
	}
	return NewDictionary(rules...), nil
}

// Load reads and parses a dictionary file.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	return Parse(data)
}
