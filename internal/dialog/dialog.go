// Package dialog keeps the stack of modal alerts and confirmations shown
// over the grid.
//
// Only the top dialog receives input. Each dialog resolves once: its
// callback runs when it is answered and the dialog is removed.
package dialog

import (
	"github.com/dshills/gridstorm/internal/input/key"
)

// Kind is the type of a dialog.
type Kind uint8

const (
	KindAlert Kind = iota
	KindConfirm
)

// Dialog is one modal message.
type Dialog struct {
	Kind    Kind
	Message string

	onYes func()
	onNo  func()
}

// Stack is a LIFO of open dialogs.
type Stack struct {
	items []*Dialog
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Alert shows msg. onAck, if not nil, runs when the alert is dismissed.
func (s *Stack) Alert(msg string, onAck func()) {
	s.items = append(s.items, &Dialog{Kind: KindAlert, Message: msg, onYes: onAck, onNo: onAck})
}

// Confirm asks msg. Exactly one of onYes and onNo runs, once.
func (s *Stack) Confirm(msg string, onYes, onNo func()) {
	s.items = append(s.items, &Dialog{Kind: KindConfirm, Message: msg, onYes: onYes, onNo: onNo})
}

// Top returns the dialog receiving input, or nil.
func (s *Stack) Top() *Dialog {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

// Len returns the number of open dialogs.
func (s *Stack) Len() int { return len(s.items) }

// IsOpen reports whether any dialog is showing.
func (s *Stack) IsOpen() bool { return len(s.items) > 0 }

// Answer resolves the top dialog. Alerts treat any answer as dismissal.
func (s *Stack) Answer(yes bool) bool {
	d := s.Top()
	if d == nil {
		return false
	}
	s.items = s.items[:len(s.items)-1]

	fn := d.onNo
	if yes {
		fn = d.onYes
	}
	if fn != nil {
		fn()
	}
	return true
}

// HandleKey answers the top dialog: y or Enter mean yes, n or Escape
// mean no. Alerts are also dismissed with Space. Other keys are swallowed
// while a dialog is open.
func (s *Stack) HandleKey(ev key.Event) bool {
	d := s.Top()
	if d == nil {
		return false
	}
	switch {
	case ev.Key == key.KeyEnter:
		s.Answer(true)
	case ev.Key == key.KeyEscape:
		s.Answer(false)
	case ev.IsRune():
		switch r := ev.Fold().Rune; {
		case r == 'y':
			s.Answer(true)
		case r == 'n':
			s.Answer(false)
		case r == ' ' && d.Kind == KindAlert:
			s.Answer(true)
		}
	}
	return true
}
