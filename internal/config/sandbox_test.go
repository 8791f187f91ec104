package config

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSandboxLuaVM(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
		errMsg  string
	}{
		{name: "string library", code: `x = string.upper("ffmpeg")`},
		{name: "table library", code: `t = {1, 2}; table.insert(t, 3); y = table.concat(t, ",")`},
		{name: "math library", code: `x = math.max(1, 5)`},
		{name: "basic functions", code: `x = type("a"); y = tostring(1); z = tonumber("2"); for k, v in pairs({}) do end`},

		{name: "os.execute blocked", code: `os.execute("ls")`, wantErr: true, errMsg: "attempt to index"},
		{name: "os.getenv blocked", code: `x = os.getenv("PATH")`, wantErr: true, errMsg: "attempt to index"},
		{name: "io.open blocked", code: `f = io.open("/etc/passwd")`, wantErr: true, errMsg: "attempt to index"},
		{name: "require blocked", code: `m = require("socket")`, wantErr: true, errMsg: "attempt to call"},
		{name: "dofile blocked", code: `dofile("/tmp/evil.lua")`, wantErr: true, errMsg: "attempt to call"},
		{name: "loadfile blocked", code: `f = loadfile("/tmp/evil.lua")`, wantErr: true, errMsg: "attempt to call"},
		{name: "load blocked", code: `f = load("return 1")`, wantErr: true, errMsg: "attempt to call"},
		{name: "loadstring blocked", code: `f = loadstring("return 1")`, wantErr: true, errMsg: "attempt to call"},
		{name: "debug blocked", code: `debug.getinfo(1)`, wantErr: true, errMsg: "attempt to index"},
		{name: "package blocked", code: `x = package.path`, wantErr: true, errMsg: "attempt to index"},
		{name: "collectgarbage blocked", code: `collectgarbage()`, wantErr: true, errMsg: "attempt to call"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newSandboxedVM()
			defer L.Close()

			err := L.DoString(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DoString(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("DoString(%q) error = %v, want substring %q", tt.code, err, tt.errMsg)
			}
		})
	}
}

func TestNewSandboxedVM(t *testing.T) {
	L := newSandboxedVM()
	defer L.Close()

	for _, name := range sandboxedGlobals {
		if v := L.GetGlobal(name); v.Type() != lua.LTNil {
			t.Errorf("global %s = %v, want nil", name, v.Type())
		}
	}
	if v := L.GetGlobal("string"); v.Type() != lua.LTTable {
		t.Errorf("string = %v, want table", v.Type())
	}
}
