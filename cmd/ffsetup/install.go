package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/archive"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/config"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/installer"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// InstallFlags holds command-line flags for install
type InstallFlags struct {
	dir         string
	yes         bool
	layout      string
	suffix      string
	url         string
	configPath  string
	noBackup    bool
	keepArchive bool
	noVerify    bool
	dryRun      bool
}

// parseInstallFlags parses command-line flags for install command.
// Value flags accept both "--flag value" and "--flag=value".
func parseInstallFlags(args []string) (*InstallFlags, error) {
	flags := &InstallFlags{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		// takeValue consumes the flag's value from "=value" or the next argument.
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s requires a value", name)
			}
			i++
			return args[i], nil
		}

		var err error
		switch name {
		case "--dir":
			flags.dir, err = takeValue()
		case "--layout":
			flags.layout, err = takeValue()
		case "--suffix":
			flags.suffix, err = takeValue()
		case "--url":
			flags.url, err = takeValue()
		case "--config":
			flags.configPath, err = takeValue()
		case "--yes", "-y":
			flags.yes = true
		case "--no-backup":
			flags.noBackup = true
		case "--keep-archive":
			flags.keepArchive = true
		case "--no-verify":
			flags.noVerify = true
		case "--dry-run":
			flags.dryRun = true
		case "--help", "-h":
			printInstallHelp()
			return nil, errHelp
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
		if err != nil {
			return nil, err
		}
	}

	return flags, nil
}

// printInstallHelp prints help text for install command
func printInstallHelp() {
	fmt.Println("Usage: ffsetup [install] [OPTIONS]")
	fmt.Println()
	fmt.Println("Download FFmpeg, install its binaries and add them to your PATH")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --dir DIR          Installation directory (skips the prompt)")
	fmt.Println("  --yes, -y          Accept the default directory without prompting")
	fmt.Println("  --layout LAYOUT    What to install: bin (default), all, suffix")
	fmt.Println("  --suffix EXT       File suffix for the suffix layout (default: .exe)")
	fmt.Println("  --url URL          Archive URL")
	fmt.Println("  --config FILE      Lua config file (default: ffsetup.lua in the ffsetup directory)")
	fmt.Println("  --no-backup        Don't write a PATH restore script")
	fmt.Println("  --keep-archive     Keep the downloaded archive")
	fmt.Println("  --no-verify        Skip checksum verification")
	fmt.Println("  --dry-run          Show what would be done without doing it")
	fmt.Println("  --help, -h         Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ffsetup                          # Prompt for the directory and install")
	fmt.Println("  ffsetup install --dir D:\\ffmpeg  # Install into D:\\ffmpeg")
	fmt.Println("  ffsetup install --layout all -y  # Install the whole distribution")
}

// applyFlags overrides config values with the ones given on the command line.
func applyFlags(cfg *config.Config, flags *InstallFlags) error {
	if flags.url != "" {
		cfg.URL = flags.url
	}
	if flags.layout != "" {
		layout, err := archive.ParseLayout(flags.layout)
		if err != nil {
			return err
		}
		cfg.Layout = layout
	}
	if flags.suffix != "" {
		cfg.Suffix = flags.suffix
	}
	if flags.noBackup {
		cfg.BackupScript = false
	}
	if flags.keepArchive {
		cfg.KeepArchive = true
	}
	if flags.noVerify {
		cfg.VerifyChecksum = false
	}
	return nil
}

// promptInstallDir asks for the installation directory. An empty answer
// selects def.
func promptInstallDir(in io.Reader, out io.Writer, def string) (string, error) {
	fmt.Fprintf(out, "FFmpeg installation directory (%s): ", def)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read installation directory: %w", err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// resolveInstallDir picks the installation directory from --dir, the prompt
// or the configured default, and makes it absolute.
func resolveInstallDir(flags *InstallFlags, def string, in io.Reader, out io.Writer, interactive bool) (string, error) {
	dir := def
	switch {
	case flags.dir != "":
		dir = flags.dir
	case !flags.yes && interactive:
		answer, err := promptInstallDir(in, out, def)
		if err != nil {
			return "", err
		}
		dir = answer
	}

	dir, err := config.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	// Keep Windows-style absolute paths as typed.
	if len(dir) >= 3 && dir[1] == ':' && (dir[2] == '\\' || dir[2] == '/') {
		return dir, nil
	}
	return filepath.Abs(dir)
}

// runInstall handles the install command (also the default command)
func runInstall(args []string) error {
	flags, err := parseInstallFlags(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return install(ctx, flags, os.Stdin, os.Stdout, isTerminal(os.Stdin))
}

func install(ctx context.Context, flags *InstallFlags, in io.Reader, out io.Writer, interactive bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(ctx, flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %s", config.FormatError(err, a.logger.Enabled(ctx, slog.LevelDebug)))
	}
	if err := applyFlags(cfg, flags); err != nil {
		return err
	}

	cfg.InstallDir, err = resolveInstallDir(flags, cfg.InstallDir, in, out, interactive)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var progress fetch.Progress = fetch.NopProgress{}
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		progress = newBarProgress(f)
	}
	downloader := fetch.NewDownloader(fetch.Options{
		Timeout:  cfg.Timeout(),
		Retries:  cfg.Retries,
		Progress: progress,
	})

	mgr, err := a.manager(downloader)
	if err != nil {
		return err
	}

	opts := installer.OptionsFromConfig(cfg)
	opts.DryRun = flags.dryRun

	if !flags.dryRun {
		fmt.Fprintf(out, "Downloading %s\n", cfg.URL)
	}
	result, err := mgr.Install(ctx, opts)
	if err != nil {
		return err
	}

	printInstallResult(out, result, a.store.Describe())
	return nil
}

func printInstallResult(out io.Writer, result *installer.Result, storeName string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if result.DryRun {
		fmt.Fprintln(out, bold("Dry run - no changes made"))
		fmt.Fprintf(out, "  Would install into: %s\n", result.InstallDir)
		switch {
		case result.Path == nil:
			fmt.Fprintf(out, "  Would add the archive's bin directory to PATH (%s)\n", storeName)
		case result.Path.Added:
			fmt.Fprintf(out, "  Would add to PATH (%s): %s\n", storeName, result.PathDir)
		default:
			fmt.Fprintf(out, "  Directory '%s' already exists in Path, skipping...\n", result.PathDir)
		}
		return
	}

	if v := result.Verification; v != nil {
		fmt.Fprintf(out, "%s Verified archive (%s)\n", green("✓"), v.Method)
	} else {
		fmt.Fprintf(out, "%s Archive not verified\n", yellow("⚠"))
	}
	fmt.Fprintf(out, "%s Installed %d files into %s\n", green("✓"), len(result.Files), result.InstallDir)
	if result.Archive != "" {
		fmt.Fprintf(out, "  Archive kept at %s\n", result.Archive)
	}

	if result.Path.AlreadyPresent {
		fmt.Fprintf(out, "Directory '%s' already exists in Path, skipping...\n", result.PathDir)
	} else {
		fmt.Fprintf(out, "%s Added %s to PATH (%s)\n", green("✓"), result.PathDir, storeName)
		if result.Path.BackupPath != "" {
			fmt.Fprintf(out, "  Previous PATH saved to: %s\n", result.Path.BackupPath)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, green("✅ Done!"))
	fmt.Fprintln(out, "FFmpeg has been successfully installed, please restart your terminal for changes to take effect.")
}
