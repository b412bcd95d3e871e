// Package editor builds in-place editing widgets for grid cells.
//
// A Registry maps column type tags to factories. Each grid owns its own
// registry, so grids with different editors can coexist. Widgets never
// touch the table themselves beyond snapshotting and marking the cell;
// commit and cancel are delegated to the Host, which owns the session.
package editor

import (
	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/nav"
	"github.com/dshills/gridstorm/internal/table"
)

// Host receives the outcome of a widget.
type Host interface {
	// Commit submits value and queues next for after a successful commit.
	Commit(value string, next nav.Move)

	// Cancel restores the cell and performs next.
	Cancel(next nav.Move)

	// Calendar opens a date picker for an input.
	Calendar(req calendar.Request)
}

// Widget is a live editor on one cell.
type Widget interface {
	// Input returns the focusable input node.
	Input() *Input

	// Snapshot returns the cell's raw HTML from before editing began.
	Snapshot() string

	// Changed reports whether the input differs from the pre-edit value.
	Changed() bool

	Commit(next nav.Move)
	Cancel(next nav.Move)
}

// Clicker is implemented by widgets that react to a click on their own
// cell.
type Clicker interface {
	Click()
}

// Factory builds a widget for cell under rule.
type Factory func(cell *table.Cell, rule column.Rule, host Host) Widget

// base implements the shared part of the built-in widgets.
type base struct {
	in       *Input
	host     Host
	snapshot string
	original string
}

// begin snapshots cell and marks it as being edited.
func begin(cell *table.Cell, in *Input, host Host) base {
	b := base{in: in, host: host, snapshot: cell.HTML, original: in.Value()}
	cell.Mark(table.MarkEditing)
	return b
}

func (b *base) Input() *Input    { return b.in }
func (b *base) Snapshot() string { return b.snapshot }
func (b *base) Changed() bool    { return b.in.Value() != b.original }

func (b *base) Commit(next nav.Move) { b.host.Commit(b.in.Value(), next) }
func (b *base) Cancel(next nav.Move) { b.host.Cancel(next) }

// TextWidget edits a single line of text.
type TextWidget struct{ base }

// NewText is the text factory: an input pre-filled with the cell text,
// bounded by the rule's length limit.
func NewText(cell *table.Cell, rule column.Rule, host Host) Widget {
	in := NewTextInput(cell.Text(), rule.Limit())
	return &TextWidget{begin(cell, in, host)}
}

// SelectWidget picks one of the rule's options.
type SelectWidget struct{ base }

// NewSelect is the select factory.
func NewSelect(cell *table.Cell, rule column.Rule, host Host) Widget {
	in := NewSelectInput(rule.Choices(), cell.Text())
	return &SelectWidget{begin(cell, in, host)}
}

// DateWidget is a text widget whose click opens the calendar.
type DateWidget struct{ base }

// NewDate is the date factory.
func NewDate(cell *table.Cell, rule column.Rule, host Host) Widget {
	in := NewTextInput(cell.Text(), rule.Limit())
	return &DateWidget{begin(cell, in, host)}
}

// Click requests a calendar seeded from the current value.
func (w *DateWidget) Click() {
	in := w.in
	w.host.Calendar(calendar.Request{
		InputID:   in.ID,
		Seed:      in.Value(),
		WriteBack: in.SetValue,
	})
}
