package envpath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	value  string
	sep    string
	fold   bool
	sets   int
	getErr error
	setErr error
}

func (m *memStore) Get() (string, error) { return m.value, m.getErr }
func (m *memStore) Set(v string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.value = v
	m.sets++
	return nil
}
func (m *memStore) Separator() string { return m.sep }
func (m *memStore) FoldCase() bool    { return m.fold }
func (m *memStore) Describe() string  { return "memory" }
func (m *memStore) RestoreScript(prior string) Script {
	return BatchRestoreScript(prior)
}

func TestRegister_AppendsOnce(t *testing.T) {
	store := &memStore{value: `C:\Windows;C:\Tools;`, sep: ";", fold: true}
	backupDir := t.TempDir()
	opts := RegisterOptions{Backup: true, BackupDir: backupDir}

	result, err := Register(store, `C:\ffmpeg`, opts)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !result.Added || result.AlreadyPresent {
		t.Errorf("first run: Added=%v AlreadyPresent=%v", result.Added, result.AlreadyPresent)
	}
	if store.value != `C:\Windows;C:\Tools;C:\ffmpeg` {
		t.Errorf("value = %q", store.value)
	}
	if result.Prior != `C:\Windows;C:\Tools;` {
		t.Errorf("Prior = %q", result.Prior)
	}

	script, err := os.ReadFile(filepath.Join(backupDir, WindowsRestoreScriptName))
	if err != nil {
		t.Fatalf("restore script missing: %v", err)
	}
	if !strings.Contains(string(script), `/d "C:\Windows;C:\Tools;" /f`) {
		t.Errorf("restore script does not hold prior value:\n%s", script)
	}

	// Repeated runs leave the directory listed exactly once.
	for i := 0; i < 2; i++ {
		result, err = Register(store, `c:\FFmpeg\`, opts)
		if err != nil {
			t.Fatalf("Register() repeat error = %v", err)
		}
		if !result.AlreadyPresent || result.Added {
			t.Errorf("repeat run: Added=%v AlreadyPresent=%v", result.Added, result.AlreadyPresent)
		}
	}
	if store.sets != 1 {
		t.Errorf("store written %d times, want 1", store.sets)
	}
	if n := strings.Count(strings.ToLower(store.value), `c:\ffmpeg`); n != 1 {
		t.Errorf("directory listed %d times, want 1", n)
	}
}

func TestRegister_EmptyValue(t *testing.T) {
	store := &memStore{sep: ":"}
	result, err := Register(store, "/opt/ffmpeg/bin", RegisterOptions{})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if store.value != "/opt/ffmpeg/bin" {
		t.Errorf("value = %q", store.value)
	}
	if result.BackupPath != "" {
		t.Errorf("BackupPath = %q, want none", result.BackupPath)
	}
}

func TestRegister_DryRun(t *testing.T) {
	store := &memStore{value: "/usr/bin", sep: ":"}
	backupDir := t.TempDir()

	result, err := Register(store, "/opt/ffmpeg", RegisterOptions{DryRun: true, Backup: true, BackupDir: backupDir})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !result.Added || result.Value != "/usr/bin:/opt/ffmpeg" {
		t.Errorf("result = %+v", result)
	}
	if store.sets != 0 || store.value != "/usr/bin" {
		t.Error("dry run must not write the store")
	}
	entries, _ := os.ReadDir(backupDir)
	if len(entries) != 0 {
		t.Error("dry run must not write a restore script")
	}
}

func TestRegister_Errors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := Register(&memStore{sep: ";"}, "", RegisterOptions{}); err == nil {
		t.Error("expected error for empty dir")
	}
	if _, err := Register(&memStore{sep: ";", getErr: boom}, `C:\x`, RegisterOptions{}); !errors.Is(err, boom) {
		t.Errorf("expected read error, got %v", err)
	}
	if _, err := Register(&memStore{sep: ";", setErr: boom}, `C:\x`, RegisterOptions{}); !errors.Is(err, boom) {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestUnregister(t *testing.T) {
	store := &memStore{value: "/a:/opt/ffmpeg:/b", sep: ":"}

	changed, err := Unregister(store, "/opt/ffmpeg/")
	if err != nil || !changed {
		t.Fatalf("Unregister() = %v, %v", changed, err)
	}
	if store.value != "/a:/b" {
		t.Errorf("value = %q", store.value)
	}

	changed, err = Unregister(store, "/opt/ffmpeg")
	if err != nil || changed {
		t.Errorf("second Unregister() = %v, %v; want false, nil", changed, err)
	}
}

func TestBatchRestoreScript(t *testing.T) {
	script := BatchRestoreScript(`%USERPROFILE%\bin;C:\tools`)

	if script.Name != "HKCU.Env.Path.backup.bat" {
		t.Errorf("Name = %q", script.Name)
	}
	for _, want := range []string{
		"@echo off\r\n",
		`reg add "HKEY_CURRENT_USER\Environment" /v Path /t REG_EXPAND_SZ /d "%%USERPROFILE%%\bin;C:\tools" /f`,
		"echo Path user environment variable restored.",
		"pause",
	} {
		if !strings.Contains(script.Content, want) {
			t.Errorf("script missing %q:\n%s", want, script.Content)
		}
	}
}
