package envpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Files kept in the ffsetup directory by FileStore.
const (
	listFileName = "path.list"
	envFileName  = "path.env"
	fishFileName = "path.fish"

	// UnixRestoreScriptName is the restore script written by FileStore.
	UnixRestoreScriptName = "ffsetup-path.backup.sh"
)

// FileStoreConfig configures a FileStore.
type FileStoreConfig struct {
	// Dir is the ffsetup directory holding the list and rendered snippets
	Dir string
	// Home is the user's home directory (default: os.UserHomeDir)
	Home string
	// Shell selects the rc file to hook (default: detected from $SHELL)
	Shell ShellType
	// NoHook disables rc file modification
	NoHook bool
}

// FileStore persists the list of ffsetup-managed PATH directories in a file
// and renders shell snippets that put them on PATH.
type FileStore struct {
	dir    string
	home   string
	shell  ShellType
	noHook bool
}

// NewFileStore creates a FileStore.
func NewFileStore(cfg FileStoreConfig) (*FileStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("Dir is required")
	}

	if cfg.Home == "" && !cfg.NoHook {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		cfg.Home = home
	}

	if cfg.Shell == "" {
		cfg.Shell = DetectShell()
	}

	return &FileStore{
		dir:    cfg.Dir,
		home:   cfg.Home,
		shell:  cfg.Shell,
		noHook: cfg.NoHook,
	}, nil
}

// Get returns the stored value.
func (s *FileStore) Get() (string, error) {
	data, err := os.ReadFile(s.listPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &StoreError{Op: "read", Path: s.listPath(), Message: "failed to read path list", Cause: err}
	}
	return strings.TrimSpace(string(data)), nil
}

// Set makes sure the user's rc file sources the shell snippets, then stores
// value and re-renders the snippets. The hook goes first so a failing rc file
// leaves the stored value unchanged.
func (s *FileStore) Set(value string) error {
	if _, err := s.EnsureHook(); err != nil {
		return err
	}

	if err := writeFileAtomic(s.listPath(), []byte(value+"\n"), 0644); err != nil {
		return err
	}

	list := Split(value, s.Separator())
	if err := writeFileAtomic(s.envPath(), []byte(renderPOSIX(list)), 0644); err != nil {
		return err
	}
	return writeFileAtomic(s.fishPath(), []byte(renderFish(list)), 0644)
}

// EnsureHook adds the sourcing block to the user's rc file if missing. It
// returns the rc file path, or "" when hooking is disabled or the shell is
// unknown.
func (s *FileStore) EnsureHook() (string, error) {
	if s.noHook || !s.shell.IsValid() {
		return "", nil
	}

	rcPath, err := RCFilePath(s.shell, s.home)
	if err != nil {
		return "", err
	}

	present, err := HasHook(rcPath)
	if err != nil {
		return "", err
	}
	if present {
		return rcPath, nil
	}

	if _, err := AddHook(rcPath, HookLine(s.shell, s.envPath(), s.fishPath())); err != nil {
		return "", err
	}
	return rcPath, nil
}

// Separator returns ":".
func (s *FileStore) Separator() string {
	return ":"
}

// FoldCase returns false; POSIX paths are case-sensitive.
func (s *FileStore) FoldCase() bool {
	return false
}

// Describe names the path list file.
func (s *FileStore) Describe() string {
	return s.listPath()
}

// RestoreScript renders a POSIX script that rewrites the list and both
// snippets for prior.
func (s *FileStore) RestoreScript(prior string) Script {
	list := Split(prior, s.Separator())

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# Restores the PATH entries managed by ffsetup.\n")
	b.WriteString("set -e\n")
	writeHeredoc(&b, s.listPath(), prior+"\n")
	writeHeredoc(&b, s.envPath(), renderPOSIX(list))
	writeHeredoc(&b, s.fishPath(), renderFish(list))
	b.WriteString("echo \"PATH entries managed by ffsetup restored.\"\n")

	return Script{Name: UnixRestoreScriptName, Content: b.String(), Mode: 0755}
}

func (s *FileStore) listPath() string { return filepath.Join(s.dir, listFileName) }
func (s *FileStore) envPath() string  { return filepath.Join(s.dir, envFileName) }
func (s *FileStore) fishPath() string { return filepath.Join(s.dir, fishFileName) }

func writeHeredoc(b *strings.Builder, path, content string) {
	fmt.Fprintf(b, "cat > %s <<'FFSETUP_EOF'\n%sFFSETUP_EOF\n", shQuote(path), content)
}

// renderPOSIX renders a snippet appending each directory to PATH once.
func renderPOSIX(list []string) string {
	var b strings.Builder
	b.WriteString("# Generated by ffsetup. Do not edit.\n")
	for _, dir := range list {
		fmt.Fprintf(&b, "case \":${PATH}:\" in\n  *:%s:*) ;;\n  *) PATH=\"${PATH:+${PATH}:}\"%s ;;\nesac\n", shQuote(dir), shQuote(dir))
	}
	b.WriteString("export PATH\n")
	return b.String()
}

// renderFish renders the fish equivalent of renderPOSIX.
func renderFish(list []string) string {
	var b strings.Builder
	b.WriteString("# Generated by ffsetup. Do not edit.\n")
	for _, dir := range list {
		q := fishQuote(dir)
		fmt.Fprintf(&b, "contains -- %s $PATH; or set -gx PATH $PATH %s\n", q, q)
	}
	return b.String()
}
