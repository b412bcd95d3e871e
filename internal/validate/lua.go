package validate

import (
	"fmt"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/script"
)

// LuaFunc is the global a validator script must define:
//
//	function validate(value, rule)
//	  -- rule.name, rule.type, rule.mandatory, rule.max_length
//	  return { ok = true, reformatted = true, reformatted_value = value }
//	end
//
// A script may instead return (ok, msg) or a bare boolean.
const LuaFunc = "validate"

// Lua runs a user script through the sandboxed script state, falling back
// to another validator for types the script declines.
type Lua struct {
	state    *script.State
	fallback Func
	log      *logrus.Entry
}

// LuaOption configures a Lua validator.
type LuaOption func(*Lua)

// WithFallback sets the validator consulted before the script. The script
// only sees values the fallback accepted, after reformatting.
func WithFallback(fn Func) LuaOption {
	return func(l *Lua) {
		l.fallback = fn
	}
}

// WithLuaLogger sets the logger for script failures.
func WithLuaLogger(entry *logrus.Entry) LuaOption {
	return func(l *Lua) {
		l.log = entry
	}
}

// NewLua loads the validator script at path.
func NewLua(path string, opts ...LuaOption) (*Lua, error) {
	l := newLua(opts)
	if err := l.state.DoFile(path); err != nil {
		l.state.Close()
		return nil, fmt.Errorf("loading validator %s: %w", path, err)
	}
	return l.checked()
}

// NewLuaString loads validator source code.
func NewLuaString(code string, opts ...LuaOption) (*Lua, error) {
	l := newLua(opts)
	if err := l.state.DoString(code); err != nil {
		l.state.Close()
		return nil, fmt.Errorf("loading validator: %w", err)
	}
	return l.checked()
}

func newLua(opts []LuaOption) *Lua {
	l := &Lua{
		fallback: Accept,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state = script.NewState(script.WithLogger(l.log))
	return l
}

func (l *Lua) checked() (*Lua, error) {
	if !l.state.HasFunction(LuaFunc) {
		l.state.Close()
		return nil, fmt.Errorf("validator script: %q %w", LuaFunc, script.ErrNotFunction)
	}
	return l, nil
}

// Func returns the validator as a Func.
func (l *Lua) Func() Func {
	return l.Validate
}

// Validate implements Func. A script error rejects the value.
func (l *Lua) Validate(raw string, rule column.Rule) Result {
	base := l.fallback(raw, rule)
	if !base.OK {
		return base
	}
	value := base.Final(raw)

	ruleTbl := l.state.Table(map[string]lua.LValue{
		"name":       lua.LString(rule.Name),
		"type":       lua.LString(rule.Type),
		"mandatory":  lua.LBool(rule.Mandatory),
		"max_length": lua.LNumber(rule.Limit()),
	})
	ret, err := l.state.Call(LuaFunc, lua.LString(value), ruleTbl)
	if err != nil {
		l.log.WithError(err).WithField("column", rule.Name).Warn("validator script failed")
		return reject(value, "Validation failed")
	}

	res := fromLua(value, ret)
	if res.OK && !res.Reformatted && base.Reformatted {
		res.Reformatted = true
		res.ReformattedValue = value
	}
	return res
}

// fromLua decodes the script's return values.
func fromLua(value string, ret []lua.LValue) Result {
	res := Result{OK: true, Value: value, ReformattedValue: value}
	if len(ret) == 0 {
		return res
	}

	switch v := ret[0].(type) {
	case *lua.LTable:
		res.OK = lua.LVAsBool(v.RawGetString("ok"))
		if msg, ok := v.RawGetString("msg").(lua.LString); ok {
			res.Msg = string(msg)
		}
		if lua.LVAsBool(v.RawGetString("reformatted")) {
			if rv := v.RawGetString("reformatted_value"); rv != lua.LNil {
				res.Reformatted = true
				res.ReformattedValue = lua.LVAsString(rv)
			}
		}
	default:
		res.OK = lua.LVAsBool(v)
		if len(ret) > 1 {
			res.Msg = lua.LVAsString(ret[1])
		}
	}
	return res
}

// Close releases the script state.
func (l *Lua) Close() {
	l.state.Close()
}
