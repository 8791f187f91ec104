package archive

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

// createTestZip writes a zip archive named name containing files. Names
// ending in "/" become directory entries.
func createTestZip(t *testing.T, name string, files map[string]string) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), name)
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", n, err)
		}
		if _, err := w.Write([]byte(files[n])); err != nil {
			t.Fatalf("failed to write entry %s: %v", n, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return archivePath
}

// ffmpegFixture mirrors the layout of an essentials build.
var ffmpegFixture = map[string]string{
	"ffmpeg-7.1-essentials_build/":                  "",
	"ffmpeg-7.1-essentials_build/LICENSE":           "GPL",
	"ffmpeg-7.1-essentials_build/bin/":              "",
	"ffmpeg-7.1-essentials_build/bin/ffmpeg.exe":    "ffmpeg",
	"ffmpeg-7.1-essentials_build/bin/ffprobe.exe":   "ffprobe",
	"ffmpeg-7.1-essentials_build/bin/ffplay.exe":    "ffplay",
	"ffmpeg-7.1-essentials_build/doc/ffmpeg.html":   "<html>",
	"ffmpeg-7.1-essentials_build/presets/libx.ffpr": "preset",
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestExtractAll(t *testing.T) {
	archivePath := createTestZip(t, "ffmpeg-7.1-essentials_build.zip", ffmpegFixture)
	dest := filepath.Join(t.TempDir(), "out")

	written, err := NewExtractor().ExtractAll(archivePath, dest)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	if len(written) != 6 {
		t.Errorf("wrote %d files, want 6: %v", len(written), written)
	}
	got := readFile(t, filepath.Join(dest, "ffmpeg-7.1-essentials_build", "bin", "ffmpeg.exe"))
	if got != "ffmpeg" {
		t.Errorf("ffmpeg.exe content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "ffmpeg-7.1-essentials_build", "doc", "ffmpeg.html")); err != nil {
		t.Errorf("doc file missing: %v", err)
	}
}

func TestExtractSuffix(t *testing.T) {
	archivePath := createTestZip(t, "ffmpeg.zip", ffmpegFixture)

	t.Run("flattens matching entries", func(t *testing.T) {
		dest := t.TempDir()
		written, err := NewExtractor().ExtractSuffix(archivePath, dest, ".EXE")
		if err != nil {
			t.Fatalf("ExtractSuffix() error = %v", err)
		}
		if len(written) != 3 {
			t.Fatalf("wrote %d files, want 3: %v", len(written), written)
		}
		for _, name := range []string{"ffmpeg.exe", "ffprobe.exe", "ffplay.exe"} {
			if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
				t.Errorf("%s missing: %v", name, err)
			}
		}
		if _, err := os.Stat(filepath.Join(dest, "LICENSE")); !os.IsNotExist(err) {
			t.Error("non-matching entry should not be extracted")
		}
		if runtime.GOOS != "windows" {
			info, err := os.Stat(filepath.Join(dest, "ffmpeg.exe"))
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm()&0111 == 0 {
				t.Errorf("ffmpeg.exe should be executable, mode %v", info.Mode())
			}
		}
	})

	t.Run("no matches", func(t *testing.T) {
		_, err := NewExtractor().ExtractSuffix(archivePath, t.TempDir(), ".dll")
		if !errors.Is(err, ErrNoMatches) {
			t.Fatalf("expected ErrNoMatches, got %v", err)
		}
	})
}

func TestExtractBin(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		files   map[string]string
		wantErr error
	}{
		{
			name:    "root named after archive",
			archive: "ffmpeg-7.1-essentials_build.zip",
			files:   ffmpegFixture,
		},
		{
			name:    "single top-level directory with different name",
			archive: "ffmpeg-release-essentials.zip",
			files:   ffmpegFixture,
		},
		{
			name:    "flat archive",
			archive: "flat.zip",
			files: map[string]string{
				"bin/ffmpeg.exe":  "ffmpeg",
				"bin/ffprobe.exe": "ffprobe",
				"bin/ffplay.exe":  "ffplay",
				"README.txt":      "readme",
			},
		},
		{
			name:    "missing bin directory",
			archive: "nobin.zip",
			files:   map[string]string{"root/tool.exe": "x"},
			wantErr: ErrNoBinDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := createTestZip(t, tt.archive, tt.files)
			dest := filepath.Join(t.TempDir(), "ffmpeg")
			staging := filepath.Join(t.TempDir(), "staging")

			moved, err := NewExtractor().ExtractBin(archivePath, dest, staging)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if _, statErr := os.Stat(staging); !os.IsNotExist(statErr) {
					t.Error("staging dir should be removed on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractBin() error = %v", err)
			}

			if len(moved) != 3 {
				t.Errorf("moved %d files, want 3: %v", len(moved), moved)
			}
			if got := readFile(t, filepath.Join(dest, "ffprobe.exe")); got != "ffprobe" {
				t.Errorf("ffprobe.exe content = %q", got)
			}
			if _, err := os.Stat(staging); !os.IsNotExist(err) {
				t.Error("staging dir should be removed after success")
			}
		})
	}
}

func TestExtractBin_ReplacesExisting(t *testing.T) {
	archivePath := createTestZip(t, "ffmpeg-7.1-essentials_build.zip", ffmpegFixture)
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "ffmpeg.exe"), []byte("old"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := NewExtractor().ExtractBin(archivePath, dest, filepath.Join(t.TempDir(), "staging")); err != nil {
		t.Fatalf("ExtractBin() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "ffmpeg.exe")); got != "ffmpeg" {
		t.Errorf("ffmpeg.exe not replaced, content = %q", got)
	}
}

func TestExtractBin_StaleStaging(t *testing.T) {
	archivePath := createTestZip(t, "ffmpeg-release-essentials.zip", ffmpegFixture)
	dest := t.TempDir()
	staging := filepath.Join(t.TempDir(), "ffmpeg-release-essentials")

	// A previous interrupted run left a second top-level directory behind.
	leftover := filepath.Join(staging, "ffmpeg-7.0-essentials_build", "bin")
	if err := os.MkdirAll(leftover, 0755); err != nil {
		t.Fatal(err)
	}

	moved, err := NewExtractor().ExtractBin(archivePath, dest, staging)
	if err != nil {
		t.Fatalf("ExtractBin() error = %v", err)
	}
	if len(moved) != 3 {
		t.Errorf("moved %d files, want 3: %v", len(moved), moved)
	}
}

func TestBinDir(t *testing.T) {
	archivePath := createTestZip(t, "ffmpeg-release-essentials.zip", ffmpegFixture)
	dest := t.TempDir()

	written, err := NewExtractor().ExtractAll(archivePath, dest)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}

	got, err := BinDir(written)
	if err != nil {
		t.Fatalf("BinDir() error = %v", err)
	}
	if want := filepath.Join(dest, "ffmpeg-7.1-essentials_build", "bin"); got != want {
		t.Errorf("BinDir() = %q, want %q", got, want)
	}

	nested := []string{
		filepath.Join(dest, "root", "share", "bin", "tool"),
		filepath.Join(dest, "root", "bin", "ffmpeg"),
	}
	if got, _ := BinDir(nested); got != filepath.Join(dest, "root", "bin") {
		t.Errorf("BinDir(nested) = %q, want the shallowest bin", got)
	}

	if _, err := BinDir([]string{filepath.Join(dest, "README.txt")}); !errors.Is(err, ErrNoBinDir) {
		t.Errorf("BinDir() error = %v, want ErrNoBinDir", err)
	}
}

func TestExtractAll_PathTraversal(t *testing.T) {
	archivePath := createTestZip(t, "evil.zip", map[string]string{
		"../escaped.txt": "gotcha",
	})
	dest := filepath.Join(t.TempDir(), "out")

	// Depending on the zip reader's insecure-path setting the archive is
	// rejected on open or the entry is rejected by the extractor.
	if _, err := NewExtractor().ExtractAll(archivePath, dest); err == nil {
		t.Fatal("expected error for entry escaping the destination")
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escaped.txt")); !os.IsNotExist(err) {
		t.Error("entry escaped the destination")
	}
}

func TestSafeJoin(t *testing.T) {
	dir := t.TempDir()
	if _, err := safeJoin(dir, "../x"); !errors.Is(err, ErrIllegalPath) {
		t.Errorf("safeJoin(../x) error = %v, want ErrIllegalPath", err)
	}
	if got, err := safeJoin(dir, "a/b.exe"); err != nil || got != filepath.Join(dir, "a", "b.exe") {
		t.Errorf("safeJoin(a/b.exe) = %q, %v", got, err)
	}
}

func TestExtract_Dispatch(t *testing.T) {
	archivePath := createTestZip(t, "ffmpeg.zip", ffmpegFixture)
	e := NewExtractor()

	written, err := e.Extract(LayoutSuffix, archivePath, t.TempDir(), "", DefaultSuffix)
	if err != nil || len(written) != 3 {
		t.Fatalf("Extract(suffix) = %v, %v", written, err)
	}

	if _, err := e.Extract(Layout("tree"), archivePath, t.TempDir(), "", ""); err == nil {
		t.Fatal("expected error for unknown layout")
	}
}

func TestArchiveStem(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"ffmpeg-release-essentials.zip", "ffmpeg-release-essentials", false},
		{"FFMPEG.ZIP", "FFMPEG", false},
		{"ffmpeg.7z", "", true},
		{".zip", "", true},
		{"zip", "", true},
	}
	for _, tt := range tests {
		got, err := ArchiveStem(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ArchiveStem(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrNotZip) {
			t.Errorf("ArchiveStem(%q) error = %v, want ErrNotZip", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ArchiveStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLayout(t *testing.T) {
	for _, in := range []string{"bin", "ALL", " suffix "} {
		if _, err := ParseLayout(in); err != nil {
			t.Errorf("ParseLayout(%q) error = %v", in, err)
		}
	}
	if _, err := ParseLayout("tree"); err == nil {
		t.Error("ParseLayout(tree) should fail")
	}
}
