package installer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/archive"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/envpath"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/transaction"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/verify"
)

// Manager orchestrates download, verification, extraction and PATH
// registration.
type Manager struct {
	dir        string
	store      envpath.Store
	downloader *fetch.Downloader
	extractor  *archive.Extractor
	logger     *slog.Logger
	now        func() time.Time
}

// Config holds configuration for the manager.
type Config struct {
	// Dir is the ffsetup directory holding the lock and the journal
	Dir string
	// Store persists the user PATH value
	Store envpath.Store
	// Downloader fetches the archive (default: fetch.NewDownloader with defaults)
	Downloader *fetch.Downloader
	// Logger receives step-level logs (default: discarded)
	Logger *slog.Logger
}

// NewManager creates a new manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("Dir is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("Store is required")
	}
	if cfg.Downloader == nil {
		cfg.Downloader = fetch.NewDownloader(fetch.Options{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		dir:        cfg.Dir,
		store:      cfg.Store,
		downloader: cfg.Downloader,
		extractor:  archive.NewExtractor(),
		logger:     cfg.Logger,
		now:        time.Now,
	}, nil
}

// JournalDir returns the directory holding install journals.
func (m *Manager) JournalDir() string {
	return filepath.Join(m.dir, transaction.JournalDirName)
}

func validateOptions(opts *Options) error {
	if opts.URL == "" {
		return fmt.Errorf("archive URL is required")
	}
	if opts.InstallDir == "" {
		return fmt.Errorf("installation directory is required")
	}
	if opts.Layout == "" {
		opts.Layout = archive.LayoutBin
	}
	if !opts.Layout.IsValid() {
		return fmt.Errorf("unknown layout %q", opts.Layout)
	}
	if opts.Layout == archive.LayoutSuffix && opts.Suffix == "" {
		opts.Suffix = archive.DefaultSuffix
	}
	if opts.SignatureURL != "" && opts.Keyring == "" {
		return fmt.Errorf("a keyring is required to verify %s", opts.SignatureURL)
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	return nil
}

// Install runs the full install flow. In dry-run mode nothing is written;
// the result only reports whether PATH would change.
func (m *Manager) Install(ctx context.Context, opts Options) (*Result, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	installDir, err := filepath.Abs(opts.InstallDir)
	if err != nil {
		return nil, fmt.Errorf("resolve installation directory: %w", err)
	}
	opts.InstallDir = installDir

	if opts.DryRun {
		return m.plan(opts)
	}

	lock, err := transaction.AcquireLock(ctx, m.dir)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	txn := transaction.New(opts.URL, opts.InstallDir, opts.Layout.String())
	txn.SetState(transaction.StateInProgress, nil)
	if err := txn.Save(m.JournalDir()); err != nil {
		return nil, fmt.Errorf("save install journal: %w", err)
	}

	result, err := m.install(ctx, opts, txn)
	if err != nil {
		txn.SetState(transaction.StateFailed, err)
		if saveErr := txn.Save(m.JournalDir()); saveErr != nil {
			m.logger.Warn("failed to record install failure", "id", txn.ID, "error", saveErr)
		}
		return nil, err
	}

	txn.SetState(transaction.StateCompleted, nil)
	if err := txn.Save(m.JournalDir()); err != nil {
		return nil, fmt.Errorf("save install journal: %w", err)
	}
	result.Journal = txn

	return result, nil
}

func (m *Manager) plan(opts Options) (*Result, error) {
	result := &Result{InstallDir: opts.InstallDir, DryRun: true}

	// The all layout's bin directory is only known once the archive is
	// extracted.
	if opts.Layout == archive.LayoutAll {
		m.logger.Info("dry run", "url", opts.URL, "install_dir", opts.InstallDir, "layout", opts.Layout.String())
		return result, nil
	}

	reg, err := envpath.Register(m.store, opts.InstallDir, envpath.RegisterOptions{DryRun: true})
	if err != nil {
		return nil, err
	}
	result.PathDir = opts.InstallDir
	result.Path = reg
	m.logger.Info("dry run", "url", opts.URL, "install_dir", opts.InstallDir, "layout", opts.Layout.String(), "path_change", reg.Added)
	return result, nil
}

func (m *Manager) install(ctx context.Context, opts Options, txn *transaction.InstallTxn) (*Result, error) {
	if err := os.MkdirAll(opts.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	m.logger.Info("downloading archive", "url", opts.URL, "dest", opts.WorkDir)
	dl, err := m.downloader.Fetch(ctx, opts.URL, opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}
	txn.Archive = dl.Path
	m.logger.Info("download complete", "path", dl.Path, "bytes", dl.Size, "duration", dl.Duration)

	result := &Result{InstallDir: opts.InstallDir, Archive: dl.Path}

	removeArchive := func() {
		if opts.KeepArchive {
			return
		}
		if err := os.Remove(dl.Path); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("failed to remove archive", "path", dl.Path, "error", err)
			return
		}
		result.Archive = ""
	}

	stem, err := archive.ArchiveStem(dl.Filename)
	if err != nil {
		removeArchive()
		return nil, err
	}

	verification, err := m.verify(ctx, dl.Path, opts)
	if err != nil {
		removeArchive()
		return nil, err
	}
	result.Verification = verification
	if verification != nil {
		txn.Verified = verification.Method.String()
	}

	if err := os.MkdirAll(opts.InstallDir, 0755); err != nil {
		return nil, fmt.Errorf("create installation directory: %w", err)
	}

	staging := filepath.Join(opts.WorkDir, stem)
	m.logger.Info("extracting archive", "layout", opts.Layout.String(), "dest", opts.InstallDir)
	files, err := m.extractor.Extract(opts.Layout, dl.Path, opts.InstallDir, staging, opts.Suffix)
	if err != nil {
		return nil, fmt.Errorf("extract archive: %w", err)
	}
	result.Files = files
	txn.Files = files
	m.logger.Debug("extracted files", "count", len(files))

	removeArchive()

	pathDir := opts.InstallDir
	if opts.Layout == archive.LayoutAll {
		pathDir, err = archive.BinDir(files)
		if err != nil {
			return nil, fmt.Errorf("locate binaries: %w", err)
		}
		txn.PathDir = pathDir
	}
	result.PathDir = pathDir

	reg, err := envpath.Register(m.store, pathDir, envpath.RegisterOptions{
		Backup:    opts.Backup,
		BackupDir: opts.BackupDir,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s on PATH: %w", pathDir, err)
	}
	result.Path = reg
	txn.PathUpdated = reg.Added
	txn.PriorPath = reg.Prior
	txn.BackupScript = reg.BackupPath
	if reg.Added {
		txn.UpdatedPath = reg.Value
	}

	if reg.AlreadyPresent {
		m.logger.Info("directory already on PATH", "dir", pathDir, "store", m.store.Describe())
	} else {
		m.logger.Info("directory added to PATH", "dir", pathDir, "store", m.store.Describe(), "backup", reg.BackupPath)
	}

	return result, nil
}

// verify fetches the configured checksum and signature files and checks the
// archive against them. It returns nil when nothing was verified.
func (m *Manager) verify(ctx context.Context, archivePath string, opts Options) (*verify.Result, error) {
	var result *verify.Result

	if opts.ChecksumURL != "" {
		sumPath := archivePath + ".sha256"
		defer os.Remove(sumPath)

		err := m.downloader.DownloadToFile(ctx, opts.ChecksumURL, sumPath)
		switch {
		case err == nil:
			r, err := verify.VerifyChecksum(archivePath, sumPath)
			if err != nil {
				return nil, fmt.Errorf("verify archive: %w", err)
			}
			m.logger.Info("checksum verified", "sha256", r.Actual)
			result = r
		case opts.ChecksumRequired || errors.Is(err, context.Canceled):
			return nil, fmt.Errorf("download checksum: %w", err)
		default:
			m.logger.Warn("checksum unavailable, continuing without verification", "url", opts.ChecksumURL, "error", err)
		}
	}

	if opts.SignatureURL != "" {
		sigPath := archivePath + ".sig"
		defer os.Remove(sigPath)

		if err := m.downloader.DownloadToFile(ctx, opts.SignatureURL, sigPath); err != nil {
			return nil, fmt.Errorf("download signature: %w", err)
		}
		r, err := verify.VerifySignature(archivePath, sigPath, opts.Keyring)
		if err != nil {
			return nil, fmt.Errorf("verify archive: %w", err)
		}
		m.logger.Info("signature verified", "signer", r.Signer)
		if result != nil {
			r.Expected, r.Actual = result.Expected, result.Actual
		}
		result = r
	}

	return result, nil
}

// Restore writes back the PATH value recorded by the most recent install
// that changed it. If PATH was edited since, only the directory that install
// registered is removed. Each call steps one install further back.
func (m *Manager) Restore(ctx context.Context, dryRun bool) (*RestoreResult, error) {
	if !dryRun {
		lock, err := transaction.AcquireLock(ctx, m.dir)
		if err != nil {
			return nil, err
		}
		defer lock.Release()
	}

	txn, err := transaction.Latest(m.JournalDir())
	if err != nil {
		return nil, err
	}

	current, err := m.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read path: %w", err)
	}

	result := &RestoreResult{Journal: txn, Current: current, Restored: txn.PriorPath, DryRun: dryRun}

	// Journals written before UpdatedPath existed are restored wholesale.
	if txn.UpdatedPath != "" && current != txn.UpdatedPath {
		sep := m.store.Separator()
		list := envpath.Remove(envpath.Split(current, sep), txn.RegisteredDir(), m.store.FoldCase())
		result.Restored = envpath.Join(list, sep)
		result.Unregistered = true
	}
	if dryRun {
		return result, nil
	}

	if result.Unregistered {
		if _, err := envpath.Unregister(m.store, txn.RegisteredDir()); err != nil {
			return nil, err
		}
		m.logger.Info("path changed since install, removed installed directory only", "id", txn.ID, "dir", txn.RegisteredDir())
	} else {
		if err := m.store.Set(txn.PriorPath); err != nil {
			return nil, fmt.Errorf("write path: %w", err)
		}
		m.logger.Info("path restored", "id", txn.ID, "store", m.store.Describe())
	}

	txn.MarkRestored(m.now())
	if err := txn.Save(m.JournalDir()); err != nil {
		return nil, fmt.Errorf("save install journal: %w", err)
	}

	return result, nil
}

// Entries lists the current PATH entries and flags the ones added by an
// ffsetup install.
func (m *Manager) Entries() ([]PathEntry, error) {
	value, err := m.store.Get()
	if err != nil {
		return nil, fmt.Errorf("read path: %w", err)
	}

	txns, err := transaction.List(m.JournalDir())
	if err != nil {
		return nil, err
	}
	var managed []string
	for _, txn := range txns {
		if txn.Restorable() {
			managed = append(managed, txn.RegisteredDir())
		}
	}

	list := envpath.Split(value, m.store.Separator())
	entries := make([]PathEntry, 0, len(list))
	for _, dir := range list {
		entries = append(entries, PathEntry{
			Dir:     dir,
			Managed: envpath.Contains(managed, dir, m.store.FoldCase()),
		})
	}
	return entries, nil
}
