// Package validate checks proposed cell values against column rules.
//
// A validator is a pure, synchronous function from a raw value and a
// column rule to a Result. Validators may reformat the value; the grid
// then writes and submits the reformatted value instead of the raw one.
package validate

import "github.com/dshills/gridstorm/internal/column"

// Result is the outcome of validating one value.
type Result struct {
	// OK is false when the value must not be committed.
	OK bool

	// Msg explains a rejection.
	Msg string

	// Value is the trimmed input value.
	Value string

	// Reformatted is true when ReformattedValue should replace the input.
	Reformatted bool

	// ReformattedValue is the canonical form of the input.
	ReformattedValue string
}

// Final returns the value to write: the reformatted value when present,
// otherwise raw.
func (r Result) Final(raw string) string {
	if r.Reformatted {
		return r.ReformattedValue
	}
	return raw
}

// Func validates raw against rule.
type Func func(raw string, rule column.Rule) Result

// Accept is the permissive validator: every value is ok.
func Accept(raw string, _ column.Rule) Result {
	return Result{OK: true, Value: raw, ReformattedValue: raw}
}

func reject(value, msg string) Result {
	return Result{OK: false, Msg: msg, Value: value, ReformattedValue: value}
}
