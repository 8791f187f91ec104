package envpath

import (
	"fmt"
	"strings"
)

// WindowsRestoreScriptName is the restore script written by RegistryStore.
const WindowsRestoreScriptName = "HKCU.Env.Path.backup.bat"

// BatchRestoreScript renders a batch file that writes prior back to the
// user Path value with reg.exe.
func BatchRestoreScript(prior string) Script {
	// %% keeps references like %USERPROFILE% literal inside the batch file.
	escaped := strings.ReplaceAll(prior, "%", "%%")

	content := fmt.Sprintf("@echo off\r\n"+
		"reg add \"HKEY_CURRENT_USER\\Environment\" /v Path /t REG_EXPAND_SZ /d \"%s\" /f\r\n"+
		"echo Path user environment variable restored.\r\n"+
		"pause\r\n", escaped)

	return Script{Name: WindowsRestoreScriptName, Content: content, Mode: 0644}
}
