//go:build windows

package envpath

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	environmentKey = `Environment`
	pathValueName  = "Path"

	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// RegistryStore reads and writes HKCU\Environment\Path.
type RegistryStore struct{}

// NewRegistryStore creates a RegistryStore.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{}
}

// Get returns the unexpanded user Path value.
func (s *RegistryStore) Get() (string, error) {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, environmentKey, registry.QUERY_VALUE)
	if err != nil {
		return "", &StoreError{Op: "read", Path: s.Describe(), Message: "failed to open key", Cause: err}
	}
	defer key.Close()

	value, _, err := key.GetStringValue(pathValueName)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", &StoreError{Op: "read", Path: s.Describe(), Message: "failed to read value", Cause: err}
	}
	return value, nil
}

// Set writes value as REG_EXPAND_SZ and notifies running programs.
func (s *RegistryStore) Set(value string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, environmentKey, registry.SET_VALUE)
	if err != nil {
		return &StoreError{Op: "write", Path: s.Describe(), Message: "failed to open key", Cause: err}
	}
	defer key.Close()

	if err := key.SetExpandStringValue(pathValueName, value); err != nil {
		return &StoreError{Op: "write", Path: s.Describe(), Message: "failed to set value", Cause: err}
	}

	broadcastEnvironmentChange()
	return nil
}

// broadcastEnvironmentChange tells Explorer and other top-level windows to
// reload the environment. Failure only means new terminals need a re-login.
func broadcastEnvironmentChange() {
	env, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return
	}
	proc := windows.NewLazySystemDLL("user32.dll").NewProc("SendMessageTimeoutW")
	if proc.Find() != nil {
		return
	}
	var result uintptr
	_, _, _ = proc.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(env)),
		smtoAbortIfHung,
		5000,
		uintptr(unsafe.Pointer(&result)),
	)
}

// Separator returns ";".
func (s *RegistryStore) Separator() string {
	return ";"
}

// FoldCase returns true; Windows paths are case-insensitive.
func (s *RegistryStore) FoldCase() bool {
	return true
}

// Describe names the registry value.
func (s *RegistryStore) Describe() string {
	return `HKEY_CURRENT_USER\Environment\Path`
}

// RestoreScript renders HKCU.Env.Path.backup.bat for prior.
func (s *RegistryStore) RestoreScript(prior string) Script {
	return BatchRestoreScript(prior)
}
