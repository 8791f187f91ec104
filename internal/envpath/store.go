package envpath

import "fmt"

// Store reads and writes the persistent PATH value.
type Store interface {
	// Get returns the raw value. A missing value reads as "".
	Get() (string, error)
	// Set replaces the value.
	Set(value string) error
	// Separator is the list separator of the value.
	Separator() string
	// FoldCase reports whether entries compare case-insensitively.
	FoldCase() bool
	// RestoreScript renders a script that puts prior back.
	RestoreScript(prior string) Script
	// Describe names the storage location for user-facing messages.
	Describe() string
}

// Script is a restore script ready to be written to disk.
type Script struct {
	Name    string
	Content string
	Mode    uint32
}

// StoreError represents an error reading or writing the persistent value
type StoreError struct {
	Op      string
	Path    string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("path store %s (%s): %s: %v", e.Op, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("path store %s (%s): %s", e.Op, e.Path, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
