package envpath

import (
	"fmt"
	"os"
	"path/filepath"
)

// RegisterOptions controls Register.
type RegisterOptions struct {
	// Backup writes a restore script before the value changes
	Backup bool
	// BackupDir is where the restore script goes (default: current directory)
	BackupDir string
	// DryRun computes the result without writing anything
	DryRun bool
}

// RegisterResult describes the outcome of Register.
type RegisterResult struct {
	Dir string
	// AlreadyPresent is set when dir was on the list and nothing changed
	AlreadyPresent bool
	// Added is set when dir was appended (or would be, in dry-run mode)
	Added bool
	// Prior is the value before the change
	Prior string
	// Value is the new value
	Value string
	// BackupPath is the restore script written, if any
	BackupPath string
}

// Register appends dir to the value held by store unless it is already there.
func Register(store Store, dir string, opts RegisterOptions) (*RegisterResult, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}

	prior, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("read path: %w", err)
	}

	sep := store.Separator()
	list := Split(prior, sep)
	result := &RegisterResult{Dir: dir, Prior: prior, Value: prior}

	if Contains(list, dir, store.FoldCase()) {
		result.AlreadyPresent = true
		return result, nil
	}

	result.Added = true
	result.Value = Join(append(list, dir), sep)
	if opts.DryRun {
		return result, nil
	}

	if opts.Backup {
		backupPath, err := WriteRestoreScript(store, prior, opts.BackupDir)
		if err != nil {
			return nil, err
		}
		result.BackupPath = backupPath
	}

	if err := store.Set(result.Value); err != nil {
		return nil, fmt.Errorf("write path: %w", err)
	}

	return result, nil
}

// Unregister removes dir from the value held by store. It reports whether
// anything changed.
func Unregister(store Store, dir string) (bool, error) {
	current, err := store.Get()
	if err != nil {
		return false, fmt.Errorf("read path: %w", err)
	}

	sep := store.Separator()
	list := Split(current, sep)
	if !Contains(list, dir, store.FoldCase()) {
		return false, nil
	}

	if err := store.Set(Join(Remove(list, dir, store.FoldCase()), sep)); err != nil {
		return false, fmt.Errorf("write path: %w", err)
	}
	return true, nil
}

// WriteRestoreScript writes the store's restore script for prior into dir
// and returns its path.
func WriteRestoreScript(store Store, prior, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	script := store.RestoreScript(prior)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	path := filepath.Join(dir, script.Name)
	mode := os.FileMode(script.Mode)
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(path, []byte(script.Content), mode); err != nil {
		return "", fmt.Errorf("write restore script: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
