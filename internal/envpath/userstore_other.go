//go:build !windows

package envpath

// NewUserStore returns the file-backed store rooted at cfg.Dir.
func NewUserStore(cfg FileStoreConfig) (Store, error) {
	return NewFileStore(cfg)
}
