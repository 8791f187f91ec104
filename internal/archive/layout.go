// Package archive extracts FFmpeg release ZIP archives.
//
// Three layouts are supported:
//   - bin: extract everything into a staging directory, move the files in
//     the distribution's bin/ directory into the destination, then remove
//     the staging directory
//   - all: extract the whole archive into the destination
//   - suffix: extract only entries whose name ends in a suffix (for example
//     ".exe"), flattened into the destination
//
// Every entry is checked against the destination so a crafted archive cannot
// write outside it.
package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Layout selects which archive entries end up in the installation directory.
type Layout string

const (
	// LayoutBin moves the archive's bin/ directory contents into place
	LayoutBin Layout = "bin"
	// LayoutAll extracts the whole archive
	LayoutAll Layout = "all"
	// LayoutSuffix extracts entries matching a filename suffix
	LayoutSuffix Layout = "suffix"
)

// DefaultSuffix is the suffix used by LayoutSuffix when none is configured.
const DefaultSuffix = ".exe"

var (
	// ErrNotZip is returned for archive names without a .zip extension.
	ErrNotZip = errors.New("not a zip file")
	// ErrIllegalPath is returned for entries that would escape the destination.
	ErrIllegalPath = errors.New("illegal file path in archive")
	// ErrNoMatches is returned when a filtered extraction selects nothing.
	ErrNoMatches = errors.New("no matching entries in archive")
	// ErrNoBinDir is returned when the archive has no bin/ directory.
	ErrNoBinDir = errors.New("bin directory not found in archive")
)

// String returns the string representation of the layout
func (l Layout) String() string {
	return string(l)
}

// IsValid reports whether l is a known layout.
func (l Layout) IsValid() bool {
	switch l {
	case LayoutBin, LayoutAll, LayoutSuffix:
		return true
	default:
		return false
	}
}

// ParseLayout converts a user-supplied name into a Layout.
func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", fmt.Errorf("unknown layout %q (supported: bin, all, suffix)", s)
	}
	return l, nil
}

// ArchiveStem strips the .zip extension from an archive filename.
func ArchiveStem(filename string) (string, error) {
	if len(filename) <= len(".zip") || !strings.EqualFold(filename[len(filename)-4:], ".zip") {
		return "", fmt.Errorf("%w: %s", ErrNotZip, filename)
	}
	return filename[:len(filename)-4], nil
}
