package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/archive"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/platform"
)

// DefaultURL is the FFmpeg release build downloaded when no URL is configured.
const DefaultURL = "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip"

// ChecksumSuffix is appended to the archive URL to locate its checksum file
// when checksum_url is not set.
const ChecksumSuffix = ".sha256"

// Config holds the installer settings.
type Config struct {
	// Directory the binaries are installed into and registered on PATH
	InstallDir string `json:"install_dir"`

	// Archive URL
	URL string `json:"url"`

	// Which archive entries are installed
	Layout archive.Layout `json:"layout"`

	// Filename suffix selected by the suffix layout
	Suffix string `json:"suffix,omitempty"`

	// Integrity checking
	VerifyChecksum bool   `json:"verify_checksum"`
	ChecksumURL    string `json:"checksum_url,omitempty"`
	SignatureURL   string `json:"signature_url,omitempty"`
	Keyring        string `json:"keyring,omitempty"`

	// PATH restore script
	BackupScript bool   `json:"backup_script"`
	BackupDir    string `json:"backup_dir,omitempty"`

	// Download and staging directory (default: current directory)
	WorkDir string `json:"work_dir,omitempty"`

	Retries        int  `json:"retries"`
	TimeoutSeconds int  `json:"timeout_seconds"`
	KeepArchive    bool `json:"keep_archive"`
}

// Default returns the configuration used when no config file exists.
func Default(info *platform.Info) *Config {
	return &Config{
		InstallDir:     platform.DefaultInstallDir(info),
		URL:            DefaultURL,
		Layout:         archive.LayoutBin,
		Suffix:         archive.DefaultSuffix,
		VerifyChecksum: true,
		BackupScript:   true,
		Retries:        fetch.DefaultRetries,
		TimeoutSeconds: int(fetch.DefaultTimeout / time.Second),
	}
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EffectiveChecksumURL returns the checksum URL to fetch, or "" when
// checksum verification is disabled.
func (c *Config) EffectiveChecksumURL() string {
	if !c.VerifyChecksum {
		return ""
	}
	if c.ChecksumURL != "" {
		return c.ChecksumURL
	}
	return c.URL + ChecksumSuffix
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if c.InstallDir == "" {
		return &ValidationError{Field: luaFieldInstallDir, Message: "cannot be empty"}
	}
	if !filepath.IsAbs(c.InstallDir) && !isWindowsAbs(c.InstallDir) {
		return &ValidationError{Field: luaFieldInstallDir, Message: fmt.Sprintf("must be an absolute path (got: %s)", c.InstallDir)}
	}

	if err := validateURL(c.URL); err != nil {
		return &ValidationError{Field: luaFieldURL, Message: err.Error()}
	}
	for field, u := range map[string]string{
		luaFieldChecksumURL:  c.ChecksumURL,
		luaFieldSignatureURL: c.SignatureURL,
	} {
		if u == "" {
			continue
		}
		if err := validateURL(u); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
	}

	if !c.Layout.IsValid() {
		return &ValidationError{Field: luaFieldLayout, Message: fmt.Sprintf("unknown layout %q (supported: bin, all, suffix)", c.Layout)}
	}
	if c.Layout == archive.LayoutSuffix && strings.TrimSpace(c.Suffix) == "" {
		return &ValidationError{Field: luaFieldSuffix, Message: "cannot be empty with the suffix layout"}
	}

	if c.SignatureURL != "" && c.Keyring == "" {
		return &ValidationError{Field: luaFieldKeyring, Message: "required when signature_url is set"}
	}

	if c.Retries < 0 {
		return &ValidationError{Field: luaFieldRetries, Message: fmt.Sprintf("cannot be negative (got: %d)", c.Retries)}
	}
	if c.Retries > fetch.MaxRetries {
		return &ValidationError{Field: luaFieldRetries, Message: fmt.Sprintf("cannot exceed %d (got: %d)", fetch.MaxRetries, c.Retries)}
	}
	if c.TimeoutSeconds <= 0 {
		return &ValidationError{Field: luaFieldTimeout, Message: fmt.Sprintf("must be positive (got: %d)", c.TimeoutSeconds)}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// validateURL accepts absolute http and https URLs.
func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %s)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}
	return nil
}

// isWindowsAbs reports whether p looks like C:\dir or C:/dir.
func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the ffsetup directory: $FFSETUP_DIR, or ~/.config/ffsetup.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnvVar); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ffsetup"), nil
}
