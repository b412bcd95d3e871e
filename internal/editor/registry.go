package editor

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/table"
)

// Registration errors.
var (
	ErrInvalidType = errors.New("editor type is empty")
	ErrNilFactory  = errors.New("editor factory is nil")
)

// Registry maps column types to widget factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the text, select and date
// factories installed.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{
		column.TypeText:   NewText,
		column.TypeSelect: NewSelect,
		column.TypeDate:   NewDate,
	}}
}

// Register associates typ with f. Re-registering a type replaces the
// previous factory.
func (r *Registry) Register(typ string, f Factory) error {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		return ErrInvalidType
	}
	if f == nil {
		return ErrNilFactory
	}
	r.mu.Lock()
	r.factories[typ] = f
	r.mu.Unlock()
	return nil
}

// Lookup returns the factory for typ, falling back to the text factory.
func (r *Registry) Lookup(typ string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.factories[strings.ToLower(typ)]; ok {
		return f
	}
	if f, ok := r.factories[column.TypeText]; ok {
		return f
	}
	return NewText
}

// Create builds a widget for cell using the factory of rule.Type.
func (r *Registry) Create(cell *table.Cell, rule column.Rule, host Host) Widget {
	return r.Lookup(rule.Type)(cell, rule, host)
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
