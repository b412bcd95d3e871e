package script

import lua "github.com/yuin/gopher-lua"

// blockedGlobals are removed from every state: they load code from disk
// or from strings outside the sandbox.
var blockedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"collectgarbage",
}

// sandbox strips globals that would let a script escape.
func sandbox(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}
