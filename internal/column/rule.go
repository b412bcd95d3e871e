// Package column describes per-column editing and validation behavior.
//
// A Dictionary is an ordered list of Rules indexed by cell index. Lookups
// past the end of the dictionary yield the default rule, so a short or
// empty dictionary still covers every cell the grid can reach.
package column

import "strings"

// Column types understood by the built-in editors and validator.
const (
	TypeText   = "text"
	TypeNumber = "number"
	TypeDate   = "date"
	TypeTime   = "time"
	TypeEmail  = "email"
	TypeURL    = "url"
	TypeMoney  = "money"
	TypeSelect = "select"
)

// DefaultMaxLength bounds text inputs whose rule leaves MaxLength unset.
const DefaultMaxLength = 50

// Rule configures editing and validation of one column.
type Rule struct {
	// Name labels the column in backend requests and messages.
	Name string `toml:"name"`

	// Type selects the editor factory and validator branch.
	Type string `toml:"type"`

	// Editable gates whether a session may open on the column.
	Editable bool `toml:"editable"`

	// Mandatory rejects empty values on commit.
	Mandatory bool `toml:"mandatory"`

	// Skip excludes the column from keyboard navigation.
	Skip bool `toml:"skip"`

	// MaxLength bounds the length of typed input.
	MaxLength int `toml:"max_length"`

	// Confirm requires user confirmation before a changed value commits.
	Confirm bool `toml:"confirm"`

	// Ask is the confirmation prompt; empty uses a generic prompt.
	Ask string `toml:"ask"`

	// Options lists select choices as "value" or "value|label".
	Options []string `toml:"options"`
}

// Default returns the rule used for cells without a dictionary entry.
func Default() Rule {
	return Rule{Type: TypeText, Editable: true}
}

// Limit returns the effective input length bound.
func (r Rule) Limit() int {
	if r.MaxLength > 0 {
		return r.MaxLength
	}
	return DefaultMaxLength
}

// Prompt returns the confirmation message for a changed value.
func (r Rule) Prompt() string {
	if r.Ask != "" {
		return r.Ask
	}
	return "Are you sure?"
}

// Option is one select choice.
type Option struct {
	Value string
	Label string
}

// Choices parses Options into value/label pairs. A plain entry is used as
// both value and label; "value|label" splits on the first bar.
func (r Rule) Choices() []Option {
	out := make([]Option, 0, len(r.Options))
	for _, o := range r.Options {
		if v, l, ok := strings.Cut(o, "|"); ok {
			out = append(out, Option{Value: v, Label: l})
			continue
		}
		out = append(out, Option{Value: o, Label: o})
	}
	return out
}
