//go:build windows

package envpath

// NewUserStore returns the registry-backed store. cfg is unused on Windows.
func NewUserStore(cfg FileStoreConfig) (Store, error) {
	return NewRegistryStore(), nil
}
