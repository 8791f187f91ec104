// Package config loads ffsetup's optional Lua configuration file.
//
// The file is executed by gopher-lua in a sandboxed VM with a read-only
// platform table injected, so settings can depend on the host:
//
//	ffsetup = {
//	  install_dir = platform.is_windows and "C:\\ffmpeg" or "~/.local/ffmpeg/bin",
//	  layout = "bin",
//	  retries = 5,
//	}
//
// Every field is optional. A missing file yields Default for the detected
// platform, and fields absent from the file keep their default values.
//
// # Schema
//
//	ffsetup = {
//	  install_dir     = "...",   -- directory put on PATH
//	  url             = "...",   -- archive URL (http or https)
//	  layout          = "bin",   -- "bin", "all" or "suffix"
//	  suffix          = ".exe",  -- used by the suffix layout
//	  verify_checksum = true,
//	  checksum_url    = "...",   -- default: url .. ".sha256"
//	  signature_url   = "...",   -- OpenPGP detached signature
//	  keyring         = "...",   -- public keyring for signature_url
//	  backup_script   = true,    -- write a PATH restore script
//	  backup_dir      = "...",   -- default: current directory
//	  work_dir        = "...",   -- download/staging directory
//	  retries         = 3,
//	  timeout_seconds = 1800,
//	  keep_archive    = false,
//	}
//
// Path fields accept a leading ~ for the home directory.
package config
