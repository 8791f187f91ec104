package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
)

// RestoreFlags holds command-line flags for restore
type RestoreFlags struct {
	dryRun bool
}

// parseRestoreFlags parses command-line flags for restore command
func parseRestoreFlags(args []string) (*RestoreFlags, error) {
	flags := &RestoreFlags{}

	for _, arg := range args {
		switch arg {
		case "--dry-run":
			flags.dryRun = true
		case "--help", "-h":
			printRestoreHelp()
			return nil, errHelp
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	return flags, nil
}

func printRestoreHelp() {
	fmt.Println("Usage: ffsetup restore [OPTIONS]")
	fmt.Println()
	fmt.Println("Put back the PATH value recorded before the most recent install that changed it.")
	fmt.Println("Running it again steps back one more install.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --dry-run          Show the value that would be restored")
	fmt.Println("  --help, -h         Show this help message")
}

// runRestore handles the restore command
func runRestore(args []string) error {
	flags, err := parseRestoreFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return restore(ctx, flags, os.Stdout)
}

func restore(ctx context.Context, flags *RestoreFlags, out io.Writer) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	mgr, err := a.manager(nil)
	if err != nil {
		return err
	}

	result, err := mgr.Restore(ctx, flags.dryRun)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	when := result.Journal.Timestamp.Local().Format("2006-01-02 15:04:05")

	if result.DryRun {
		fmt.Fprintf(out, "Would restore PATH (%s) from the install of %s:\n", a.store.Describe(), when)
		fmt.Fprintf(out, "  current:  %s\n", result.Current)
		fmt.Fprintf(out, "  restored: %s\n", result.Restored)
		return nil
	}

	if result.Unregistered {
		fmt.Fprintf(out, "%s PATH (%s) changed since the install of %s; removed %s only\n",
			green("✓"), a.store.Describe(), when, result.Journal.RegisteredDir())
	} else {
		fmt.Fprintf(out, "%s Restored PATH (%s) from before the install of %s\n", green("✓"), a.store.Describe(), when)
	}
	fmt.Fprintln(out, "Please restart your terminal for changes to take effect.")
	return nil
}
