// Package envpath manages the current user's persistent executable search
// path.
//
// The persisted value is a single string holding a separator-delimited
// directory list. On Windows it is the Path value under
// HKEY_CURRENT_USER\Environment. Elsewhere ffsetup keeps its own list in the
// ffsetup directory and renders shell snippets from it (path.env for POSIX
// shells, path.fish for fish) which the user's rc file sources through a
// one-time hook.
//
// Register is idempotent: a directory already on the list is left alone, so
// repeated runs keep it there exactly once. Before changing the value a
// restore script holding the prior value can be written; running it puts the
// old value back.
//
//	store, err := envpath.NewUserStore(envpath.FileStoreConfig{Dir: ffsetupDir})
//	result, err := envpath.Register(store, `C:\ffmpeg`, envpath.RegisterOptions{
//	    Backup:    true,
//	    BackupDir: ".",
//	})
package envpath
