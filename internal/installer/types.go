package installer

import (
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/archive"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/config"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/envpath"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/transaction"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/verify"
)

// Options describes one install run.
type Options struct {
	URL        string
	InstallDir string
	Layout     archive.Layout
	Suffix     string
	// WorkDir receives the archive and the bin layout's staging directory
	// (default: current directory)
	WorkDir string

	// ChecksumURL is fetched and compared against the archive when set
	ChecksumURL string
	// ChecksumRequired makes a failed checksum download fatal. When false
	// the install continues unverified.
	ChecksumRequired bool
	SignatureURL     string
	Keyring          string

	// Backup writes a PATH restore script to BackupDir before PATH changes
	Backup    bool
	BackupDir string

	KeepArchive bool
	DryRun      bool
}

// OptionsFromConfig maps a loaded configuration onto install options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:              cfg.URL,
		InstallDir:       cfg.InstallDir,
		Layout:           cfg.Layout,
		Suffix:           cfg.Suffix,
		WorkDir:          cfg.WorkDir,
		ChecksumURL:      cfg.EffectiveChecksumURL(),
		ChecksumRequired: cfg.VerifyChecksum && cfg.ChecksumURL != "",
		SignatureURL:     cfg.SignatureURL,
		Keyring:          cfg.Keyring,
		Backup:           cfg.BackupScript,
		BackupDir:        cfg.BackupDir,
		KeepArchive:      cfg.KeepArchive,
	}
}

// Result is the outcome of Install.
type Result struct {
	InstallDir string
	// PathDir is the directory registered on PATH: InstallDir, or the
	// archive's bin directory under it for the all layout. Empty in a dry
	// run of the all layout, where it is not known before extraction.
	PathDir string
	// Archive is the downloaded archive path; empty once removed
	Archive string
	Files   []string
	// Verification is nil when the archive was not verified
	Verification *verify.Result
	// Path is nil in a dry run of the all layout
	Path         *envpath.RegisterResult
	Journal      *transaction.InstallTxn
	DryRun       bool
}

// RestoreResult is the outcome of Restore.
type RestoreResult struct {
	Journal *transaction.InstallTxn
	// Current is the value that was replaced
	Current string
	// Restored is the value written back
	Restored string
	// Unregistered is set when PATH changed after the install. Only the
	// installed directory is removed then, keeping the later edits.
	Unregistered bool
	DryRun       bool
}

// PathEntry is one element of the persistent PATH value.
type PathEntry struct {
	Dir string
	// Managed is set for directories an ffsetup install added
	Managed bool
}
