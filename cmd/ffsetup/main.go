package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/config"
)

// Version will be set at build time via -ldflags
var Version = "v1.0.0"

// errHelp is returned by flag parsers after printing help.
var errHelp = errors.New("help requested")

func main() {
	args := os.Args[1:]

	cmd := "install"
	if len(args) > 0 {
		switch args[0] {
		case "--version":
			fmt.Printf("ffsetup %s\n", Version)
			return
		case "help":
			printHelp()
			return
		case "install", "restore", "path":
			cmd = args[0]
			args = args[1:]
		}
	}

	var err error
	switch cmd {
	case "install":
		err = runInstall(args)
	case "restore":
		err = runRestore(args)
	case "path":
		err = runPath(args)
	}

	if err != nil {
		if errors.Is(err, errHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger returns the process logger. Debug output is enabled with
// FFSETUP_DEBUG, otherwise only warnings and errors are shown.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv(config.DebugEnvVar) != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printHelp() {
	fmt.Println("ffsetup - install FFmpeg and put it on your PATH")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ffsetup [install] [options]   Download FFmpeg and add it to PATH")
	fmt.Println("  ffsetup restore [--dry-run]   Put back the PATH from before the last install")
	fmt.Println("  ffsetup path                  List PATH entries, marking ffsetup's")
	fmt.Println("  ffsetup --version             Show version information")
	fmt.Println()
	fmt.Println("Run 'ffsetup install --help' for install options.")
}
