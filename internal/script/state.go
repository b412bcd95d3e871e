// Package script hosts sandboxed Lua for user-supplied grid hooks such as
// custom validators.
//
// gopher-lua's LState is not goroutine-safe. State serializes access with
// a mutex; scripts run to completion on the calling goroutine.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds a single DoString, DoFile or Call.
const DefaultExecutionTimeout = 2 * time.Second

// State wraps a sandboxed gopher-lua state.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	log     *logrus.Entry
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the deadline for each execution.
// Zero disables the deadline.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithLogger routes grid.log output to entry.
func WithLogger(entry *logrus.Entry) StateOption {
	return func(s *State) {
		s.log = entry
	}
}

// NewState creates a sandboxed Lua state with the grid helper module
// installed as the global "grid".
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultExecutionTimeout,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	sandbox(s.L)
	s.installGridModule()
	s.L.SetTop(0)
	return s
}

// openSafeLibraries opens the standard libraries that cannot reach the
// host. io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installGridModule exposes helpers to scripts:
//
//	grid.log(msg)        -- debug log line
//	grid.trim(s)         -- whitespace trim
//	grid.split(s, sep)   -- table of parts
func (s *State) installGridModule() {
	mod := s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			s.log.WithField("source", "lua").Debug(L.CheckString(1))
			return 0
		},
		"trim": func(L *lua.LState) int {
			L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
			return 1
		},
		"split": func(L *lua.LState) int {
			parts := strings.Split(L.CheckString(1), L.CheckString(2))
			tbl := L.NewTable()
			for _, p := range parts {
				tbl.Append(lua.LString(p))
			}
			L.Push(tbl)
			return 1
		},
	})
	s.L.SetGlobal("grid", mod)
}

// DoString executes Lua source.
func (s *State) DoString(code string) error {
	return s.exec(func() error { return s.L.DoString(code) })
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	return s.exec(func() error { return s.L.DoFile(path) })
}

func (s *State) exec(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	cancel := s.arm()
	defer cancel()
	return s.translate(recovered(fn))
}

// arm installs the execution deadline on the Lua state.
func (s *State) arm() context.CancelFunc {
	if s.timeout <= 0 {
		s.L.RemoveContext()
		return func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.L.SetContext(ctx)
	return func() {
		cancel()
		s.L.RemoveContext()
	}
}

func (s *State) translate(err error) error {
	if err == nil {
		return nil
	}
	if ctx := s.L.Context(); ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	return err
}

func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// HasFunction reports whether name is a global function.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call calls a global Lua function and returns its results.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%q: %w (got %s)", fn, ErrNotFunction, fnVal.Type())
	}

	cancel := s.arm()
	defer cancel()

	top := s.L.GetTop()
	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}
	err := recovered(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, s.translate(err)
	}

	n := s.L.GetTop() - top
	results := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, s.L.Get(top+i))
	}
	s.L.SetTop(top)
	return results, nil
}

// Table converts a string map to a Lua table.
func (s *State) Table(fields map[string]lua.LValue) *lua.LTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl := s.L.NewTable()
	for k, v := range fields {
		tbl.RawSetString(k, v)
	}
	return tbl
}

// Close releases the Lua state. Close is idempotent.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
