// Package testutil provides utilities for testing ffsetup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	// Root is the temporary directory everything else lives under
	Root string
	// Dir is the ffsetup directory ($FFSETUP_DIR)
	Dir string
	// Home is the fake home directory ($HOME, %USERPROFILE%)
	Home string
	// Work is a scratch directory for downloads and restore scripts
	Work string
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures ffsetup tests never touch:
// - The user's real shell rc files and PATH snippets
// - The user's ffsetup directory, config and install journal
//
// $SHELL is cleared so no rc file is hooked unless a test opts in.
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root: tmpDir,
		Dir:  filepath.Join(tmpDir, "ffsetup"),
		Home: filepath.Join(tmpDir, "home"),
		Work: filepath.Join(tmpDir, "work"),
	}

	t.Setenv("FFSETUP_DIR", env.Dir)
	t.Setenv("FFSETUP_DEBUG", "")
	t.Setenv("HOME", env.Home)
	t.Setenv("USERPROFILE", env.Home)
	t.Setenv("SHELL", "")

	for _, dir := range []string{env.Dir, env.Home, env.Work} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
