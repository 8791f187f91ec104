package config

// Lua schema field names and globals
const (
	luaGlobalFFsetup     = "ffsetup"
	luaFieldInstallDir   = "install_dir"
	luaFieldURL          = "url"
	luaFieldLayout       = "layout"
	luaFieldSuffix       = "suffix"
	luaFieldChecksumURL  = "checksum_url"
	luaFieldVerify       = "verify_checksum"
	luaFieldSignatureURL = "signature_url"
	luaFieldKeyring      = "keyring"
	luaFieldBackupScript = "backup_script"
	luaFieldBackupDir    = "backup_dir"
	luaFieldWorkDir      = "work_dir"
	luaFieldRetries      = "retries"
	luaFieldTimeout      = "timeout_seconds"
	luaFieldKeepArchive  = "keep_archive"
)

const (
	// FileName is the config file looked up in the ffsetup directory.
	FileName = "ffsetup.lua"

	// DirEnvVar overrides the ffsetup directory.
	DirEnvVar = "FFSETUP_DIR"

	// DebugEnvVar enables debug logging when set to a non-empty value.
	DebugEnvVar = "FFSETUP_DEBUG"

	// MaxConfigSize is the largest config file ParseFile will read.
	MaxConfigSize = 1 << 20
)
