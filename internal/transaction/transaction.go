// Package transaction provides the install lock and the install journal.
//
// Every install run records what it did (archive, installed files, whether
// PATH changed and its prior value) in a JSON journal under the ffsetup
// directory. ffsetup restore uses the journal to put the previous PATH value
// back.
package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JournalDirName is the journal subdirectory of the ffsetup directory.
const JournalDirName = "txn"

// ErrNoJournal is returned by Latest when no restorable install exists.
var ErrNoJournal = errors.New("no install that changed PATH has been recorded")

// State represents the current state of an install.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// InstallTxn records one install run.
type InstallTxn struct {
	Version   int       `json:"version"` // Schema version for future evolution
	ID        string    `json:"id"`      // UUID for unique identification
	Timestamp time.Time `json:"timestamp"`

	URL        string   `json:"url"`
	InstallDir string   `json:"install_dir"`
	Layout     string   `json:"layout"`
	Archive    string   `json:"archive,omitempty"`
	Files      []string `json:"files"`
	Verified   string   `json:"verified,omitempty"` // verification method used

	PathUpdated bool `json:"path_updated"`
	// PathDir is the directory registered on PATH when it differs from
	// InstallDir (the all layout registers the archive's bin directory).
	PathDir      string `json:"path_dir,omitempty"`
	PriorPath    string `json:"prior_path,omitempty"`
	UpdatedPath  string `json:"updated_path,omitempty"` // value written by the install
	BackupScript string `json:"backup_script,omitempty"`

	State     State      `json:"state"`
	LastError string     `json:"last_error,omitempty"`
	Restored  *time.Time `json:"restored,omitempty"`
}

// New creates a pending install record.
func New(url, installDir, layout string) *InstallTxn {
	return &InstallTxn{
		Version:    1,
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		URL:        url,
		InstallDir: installDir,
		Layout:     layout,
		Files:      []string{},
		State:      StatePending,
	}
}

// SetState updates the state and records err, if any.
func (t *InstallTxn) SetState(state State, err error) {
	t.State = state
	if err != nil {
		t.LastError = err.Error()
	} else {
		t.LastError = ""
	}
}

// Restorable reports whether the install changed PATH and has not been
// restored yet.
func (t *InstallTxn) Restorable() bool {
	return t.State == StateCompleted && t.PathUpdated && t.Restored == nil
}

// RegisteredDir returns the directory the install put on PATH.
func (t *InstallTxn) RegisteredDir() string {
	if t.PathDir != "" {
		return t.PathDir
	}
	return t.InstallDir
}

// MarkRestored records that PriorPath was written back.
func (t *InstallTxn) MarkRestored(at time.Time) {
	at = at.UTC()
	t.Restored = &at
}

// Filename returns the journal file name for t.
func (t *InstallTxn) Filename() string {
	return fmt.Sprintf("txn-install-%s.json", t.ID)
}

// Save writes the transaction to dir atomically.
// Uses write-then-rename pattern for atomicity.
func (t *InstallTxn) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create transaction directory: %w", err)
	}

	finalPath := filepath.Join(dir, t.Filename())
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temporary transaction file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename transaction file: %w", err)
	}

	// Sync directory for durability
	df, err := os.Open(dir)
	if err == nil {
		if syncErr := df.Sync(); syncErr != nil {
			df.Close()
			return fmt.Errorf("sync directory: %w", syncErr)
		}
		df.Close()
	}

	return nil
}

// Load reads a transaction from disk.
func Load(path string) (*InstallTxn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transaction file: %w", err)
	}

	var txn InstallTxn
	if err := json.Unmarshal(data, &txn); err != nil {
		return nil, fmt.Errorf("unmarshal transaction %s: %w", filepath.Base(path), err)
	}

	return &txn, nil
}

// List loads every journal in dir, oldest first. A missing dir yields an
// empty list.
func List(dir string) ([]*InstallTxn, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transaction directory: %w", err)
	}

	var txns []*InstallTxn
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "txn-install-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		txn, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.Before(txns[j].Timestamp)
	})
	return txns, nil
}

// Latest returns the most recent restorable install in dir.
func Latest(dir string) (*InstallTxn, error) {
	txns, err := List(dir)
	if err != nil {
		return nil, err
	}

	for i := len(txns) - 1; i >= 0; i-- {
		if txns[i].Restorable() {
			return txns[i], nil
		}
	}
	return nil, ErrNoJournal
}
