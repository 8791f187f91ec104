package envpath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseShellFromPath(t *testing.T) {
	tests := map[string]ShellType{
		"/bin/bash":           ShellBash,
		"/usr/bin/zsh":        ShellZsh,
		"/usr/local/bin/fish": ShellFish,
		"/bin/BASH":           ShellBash,
		"/bin/tcsh":           ShellUnknown,
		"":                    ShellUnknown,
	}
	for in, want := range tests {
		if got := parseShellFromPath(in); got != want {
			t.Errorf("parseShellFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectShell(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")
	if got := DetectShell(); got != ShellZsh {
		t.Errorf("DetectShell() = %q, want zsh", got)
	}
}

func TestRCFilePath(t *testing.T) {
	home := "/home/u"
	tests := map[ShellType]string{
		ShellBash: filepath.Join(home, ".bashrc"),
		ShellZsh:  filepath.Join(home, ".zshrc"),
		ShellFish: filepath.Join(home, ".config", "fish", "config.fish"),
	}
	for shell, want := range tests {
		got, err := RCFilePath(shell, home)
		if err != nil || got != want {
			t.Errorf("RCFilePath(%s) = %q, %v; want %q", shell, got, err, want)
		}
	}
	if _, err := RCFilePath(ShellUnknown, home); err == nil {
		t.Error("expected error for unknown shell")
	}
}

func TestAddHook_NewFile(t *testing.T) {
	rcPath := filepath.Join(t.TempDir(), "nested", ".zshrc")

	backup, err := AddHook(rcPath, "[ -f '/x/path.env' ] && . '/x/path.env'")
	if err != nil {
		t.Fatalf("AddHook() error = %v", err)
	}
	if backup != "" {
		t.Errorf("backup = %q, want none for new file", backup)
	}

	present, err := HasHook(rcPath)
	if err != nil || !present {
		t.Errorf("HasHook() = %v, %v", present, err)
	}

	info, err := os.Stat(rcPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("rc mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestHasHook_Missing(t *testing.T) {
	present, err := HasHook(filepath.Join(t.TempDir(), "none"))
	if err != nil || present {
		t.Errorf("HasHook(missing) = %v, %v", present, err)
	}
}

func TestQuoting(t *testing.T) {
	if got := shQuote("it's"); got != `'it'\''s'` {
		t.Errorf("shQuote = %s", got)
	}
	if got := fishQuote(`a\b'c`); got != `'a\\b\'c'` {
		t.Errorf("fishQuote = %s", got)
	}
}
