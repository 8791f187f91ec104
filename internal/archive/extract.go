package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract dispatches to the extraction routine for layout and returns the
// paths written under destDir. stagingDir is only used by LayoutBin.
func (e *Extractor) Extract(layout Layout, archivePath, destDir, stagingDir, suffix string) ([]string, error) {
	switch layout {
	case LayoutAll:
		return e.ExtractAll(archivePath, destDir)
	case LayoutSuffix:
		return e.ExtractSuffix(archivePath, destDir, suffix)
	case LayoutBin:
		return e.ExtractBin(archivePath, destDir, stagingDir)
	default:
		return nil, fmt.Errorf("unknown layout %q", layout)
	}
}

// ExtractAll extracts a .zip archive to a destination directory
func (e *Extractor) ExtractAll(archivePath, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	var written []string
	for _, f := range reader.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return written, fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}

		if !f.Mode().IsRegular() {
			continue
		}

		if err := writeEntry(f, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}

	return written, nil
}

// ExtractSuffix extracts regular entries whose base name ends with suffix
// (case-insensitive) directly into destDir, discarding their directories.
func (e *Extractor) ExtractSuffix(archivePath, destDir, suffix string) ([]string, error) {
	if suffix == "" {
		return nil, fmt.Errorf("suffix is required")
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	suffix = strings.ToLower(suffix)
	var written []string
	for _, f := range reader.File {
		if !f.Mode().IsRegular() {
			continue
		}

		name := entryBase(f.Name)
		if !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}

		target, err := safeJoin(destDir, name)
		if err != nil {
			return written, err
		}
		if err := writeEntry(f, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}

	if len(written) == 0 {
		return nil, fmt.Errorf("%w: suffix %q", ErrNoMatches, suffix)
	}
	return written, nil
}

// ExtractBin extracts the archive into stagingDir, moves the files of its
// bin/ directory into destDir and removes stagingDir.
func (e *Extractor) ExtractBin(archivePath, destDir, stagingDir string) ([]string, error) {
	if stagingDir == "" {
		return nil, fmt.Errorf("staging directory is required")
	}

	// Leftovers from an interrupted run would add a second top-level dir.
	if err := os.RemoveAll(stagingDir); err != nil {
		return nil, fmt.Errorf("clear staging dir: %w", err)
	}

	if _, err := e.ExtractAll(archivePath, stagingDir); err != nil {
		os.RemoveAll(stagingDir)
		return nil, fmt.Errorf("extract to staging: %w", err)
	}

	stem, _ := ArchiveStem(filepath.Base(archivePath))
	binDir, err := findBinDir(stagingDir, stem)
	if err != nil {
		os.RemoveAll(stagingDir)
		return nil, err
	}

	moved, err := MoveFiles(binDir, destDir)
	if err != nil {
		return moved, fmt.Errorf("move files: %w", err)
	}

	if err := os.RemoveAll(stagingDir); err != nil {
		return moved, fmt.Errorf("remove staging dir: %w", err)
	}

	return moved, nil
}

// findBinDir locates the distribution's bin directory under root. It tries
// <root>/<stem>/bin, then the bin directory of a single top-level directory,
// then <root>/bin.
func findBinDir(root, stem string) (string, error) {
	var candidates []string
	if stem != "" {
		candidates = append(candidates, filepath.Join(root, stem, "bin"))
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("read staging dir: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		candidates = append(candidates, filepath.Join(root, entries[0].Name(), "bin"))
	}
	candidates = append(candidates, filepath.Join(root, "bin"))

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, nil
		}
	}
	return "", ErrNoBinDir
}

// BinDir returns the shallowest directory named bin that holds one of
// files, as returned by ExtractAll.
func BinDir(files []string) (string, error) {
	best, bestDepth := "", -1
	for _, f := range files {
		dir := filepath.Dir(f)
		if !strings.EqualFold(filepath.Base(dir), "bin") {
			continue
		}
		depth := strings.Count(filepath.ToSlash(dir), "/")
		if bestDepth == -1 || depth < bestDepth {
			best, bestDepth = dir, depth
		}
	}
	if best == "" {
		return "", ErrNoBinDir
	}
	return best, nil
}

// MoveFiles moves every regular file in from into to, creating to if needed.
// Existing files in to are replaced. Subdirectories of from are ignored.
func MoveFiles(from, to string) ([]string, error) {
	if err := os.MkdirAll(to, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	entries, err := os.ReadDir(from)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", from, err)
	}

	var moved []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		src := filepath.Join(from, entry.Name())
		dst := filepath.Join(to, entry.Name())
		if err := moveFile(src, dst); err != nil {
			return moved, err
		}
		moved = append(moved, dst)
	}

	return moved, nil
}

// moveFile renames src to dst, falling back to copy and delete when the
// rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	in.Close()
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}

// writeEntry copies a zip entry to target, creating parent directories.
func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	// Windows-built archives carry no unix mode; keep binaries runnable.
	if strings.EqualFold(filepath.Ext(target), ".exe") || mode&0111 != 0 {
		mode |= 0755
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}

// safeJoin joins name onto dir and rejects results outside dir.
func safeJoin(dir, name string) (string, error) {
	cleanDir := filepath.Clean(dir)
	target := filepath.Join(cleanDir, filepath.FromSlash(name))
	if target != cleanDir && !strings.HasPrefix(target, cleanDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrIllegalPath, name)
	}
	return target, nil
}

// entryBase returns the last element of a zip entry name. Zip names use
// forward slashes, but some Windows tools write backslashes.
func entryBase(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
