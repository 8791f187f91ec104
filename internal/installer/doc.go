// Package installer runs the FFmpeg install flow end to end: lock, download,
// verify, extract, clean up, register the installation directory on the
// persistent user PATH, and record the result in the install journal.
//
// Basic usage:
//
//	mgr, err := installer.NewManager(installer.Config{
//	    Dir:   ffsetupDir,
//	    Store: store,
//	})
//	result, err := mgr.Install(ctx, installer.OptionsFromConfig(cfg))
package installer
