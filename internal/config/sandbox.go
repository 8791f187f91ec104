package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxedGlobals are removed from every config VM. Without them a config
// cannot run commands, touch the filesystem or load other code.
var sandboxedGlobals = []string{
	"os",
	"io",
	"require",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"debug",
	"module",
	"collectgarbage",
}

// sandboxLuaVM strips the unsafe parts of the standard library from L.
// string, table, math and the basic functions stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range sandboxedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	// package.loaders would let code reach the filesystem indirectly.
	L.SetGlobal("package", lua.LNil)
}

// newSandboxedVM creates a Lua state for config parsing.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
		RegistrySize:  1024 * 8,
	})
	sandboxLuaVM(L)
	return L
}
