package platform

import (
	"os"
	"path/filepath"
)

// WindowsInstallDir is the default FFmpeg installation directory on Windows.
const WindowsInstallDir = `C:\ffmpeg`

// DefaultInstallDir returns the directory offered at the installation prompt.
func DefaultInstallDir(info *Info) string {
	if info != nil && info.IsWindows() {
		return WindowsInstallDir
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "ffmpeg", "bin")
	}
	return filepath.Join(home, ".local", "ffmpeg", "bin")
}
