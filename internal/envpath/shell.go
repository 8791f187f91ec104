package envpath

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShellType represents a supported shell
type ShellType string

const (
	// ShellBash represents the Bash shell
	ShellBash ShellType = "bash"
	// ShellZsh represents the Z shell
	ShellZsh ShellType = "zsh"
	// ShellFish represents the Fish shell
	ShellFish ShellType = "fish"
	// ShellUnknown represents an unknown or unsupported shell
	ShellUnknown ShellType = "unknown"
)

// HookMarker starts the block ffsetup adds to rc files.
const HookMarker = "# ffsetup - FFmpeg PATH"

// hookBackupSuffix is appended to an rc file's name for its backup copy.
const hookBackupSuffix = ".ffsetup-backup"

// IsValid returns true if the shell type is supported
func (s ShellType) IsValid() bool {
	switch s {
	case ShellBash, ShellZsh, ShellFish:
		return true
	default:
		return false
	}
}

// DetectShell returns the user's login shell from $SHELL.
func DetectShell() ShellType {
	return parseShellFromPath(os.Getenv("SHELL"))
}

// parseShellFromPath extracts the shell type from a shell binary path,
// e.g. /usr/bin/zsh -> zsh.
func parseShellFromPath(shellPath string) ShellType {
	if shellPath == "" {
		return ShellUnknown
	}

	switch strings.ToLower(filepath.Base(shellPath)) {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// RCFilePath returns the rc file for shell under home.
func RCFilePath(shell ShellType, home string) (string, error) {
	switch shell {
	case ShellBash:
		return filepath.Join(home, ".bashrc"), nil
	case ShellZsh:
		return filepath.Join(home, ".zshrc"), nil
	case ShellFish:
		return filepath.Join(home, ".config", "fish", "config.fish"), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
}

// HookLine returns the rc file line that sources the rendered PATH snippet.
func HookLine(shell ShellType, envFile, fishFile string) string {
	if shell == ShellFish {
		return fmt.Sprintf("test -f %s; and source %s", fishQuote(fishFile), fishQuote(fishFile))
	}
	return fmt.Sprintf("[ -f %s ] && . %s", shQuote(envFile), shQuote(envFile))
}

// HasHook reports whether rcPath already contains the ffsetup block.
func HasHook(rcPath string) (bool, error) {
	file, err := os.Open(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &StoreError{Op: "read", Path: rcPath, Message: "failed to open rc file", Cause: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == HookMarker {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, &StoreError{Op: "read", Path: rcPath, Message: "failed to read rc file", Cause: err}
	}
	return false, nil
}

// AddHook appends the ffsetup block to rcPath, backing up an existing file
// first. Returns the backup path ("" when the rc file did not exist).
func AddHook(rcPath, line string) (string, error) {
	existing, err := os.ReadFile(rcPath)
	if err != nil && !os.IsNotExist(err) {
		return "", &StoreError{Op: "write", Path: rcPath, Message: "failed to read existing rc file", Cause: err}
	}

	var backupPath string
	if err == nil {
		backupPath = rcPath + hookBackupSuffix
		if err := os.WriteFile(backupPath, existing, 0644); err != nil {
			return "", &StoreError{Op: "write", Path: backupPath, Message: "failed to write backup file", Cause: err}
		}
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", HookMarker, line)

	if err := writeFileAtomic(rcPath, []byte(b.String()), 0644); err != nil {
		return "", err
	}
	return backupPath, nil
}

// writeFileAtomic writes data to a temp file in path's directory and
// renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StoreError{Op: "write", Path: path, Message: "failed to create parent directory", Cause: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".ffsetup-tmp-*")
	if err != nil {
		return &StoreError{Op: "write", Path: path, Message: "failed to create temporary file", Cause: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return &StoreError{Op: "write", Path: path, Message: "failed to write temporary file", Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &StoreError{Op: "write", Path: path, Message: "failed to sync file", Cause: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &StoreError{Op: "write", Path: path, Message: "failed to close temporary file", Cause: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return &StoreError{Op: "write", Path: path, Message: "failed to set permissions", Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &StoreError{Op: "write", Path: path, Message: "failed to rename temp file", Cause: err}
	}
	return nil
}

// shQuote single-quotes s for POSIX shells.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}
