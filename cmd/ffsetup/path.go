package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// runPath handles the path command
func runPath(args []string) error {
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			fmt.Println("Usage: ffsetup path")
			fmt.Println()
			fmt.Println("List the persistent user PATH entries. Entries added by ffsetup are marked with *.")
			return errHelp
		default:
			return fmt.Errorf("unknown argument: %s", arg)
		}
	}

	return listPath(context.Background(), os.Stdout)
}

func listPath(ctx context.Context, out io.Writer) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	mgr, err := a.manager(nil)
	if err != nil {
		return err
	}

	entries, err := mgr.Entries()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "PATH entries (%s):\n", a.store.Describe())
	if len(entries) == 0 {
		fmt.Fprintln(out, "  (empty)")
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	for _, e := range entries {
		if e.Managed {
			fmt.Fprintf(out, "* %s\n", cyan(e.Dir))
		} else {
			fmt.Fprintf(out, "  %s\n", e.Dir)
		}
	}
	return nil
}
