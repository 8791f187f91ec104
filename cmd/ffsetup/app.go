package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/config"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/envpath"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/fetch"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/installer"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/platform"
)

// app bundles what every subcommand needs.
type app struct {
	logger *slog.Logger
	info   *platform.Info
	dir    string
	store  envpath.Store
}

func newApp(ctx context.Context) (*app, error) {
	logger := newLogger()

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}
	logger.Debug("detected platform", "os", info.OS, "arch", info.Arch, "distro", info.Platform)

	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("get ffsetup directory: %w", err)
	}
	logger.Debug("using ffsetup directory", "dir", dir)

	store, err := envpath.NewUserStore(envpath.FileStoreConfig{Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("open PATH store: %w", err)
	}

	return &app{logger: logger, info: info, dir: dir, store: store}, nil
}

func (a *app) loadConfig(ctx context.Context, path string) (*config.Config, error) {
	parser := config.NewParser(platform.StaticDetector{Info: a.info}).WithLogger(config.SlogLogger(a.logger))
	return parser.Load(ctx, path)
}

func (a *app) manager(downloader *fetch.Downloader) (*installer.Manager, error) {
	return installer.NewManager(installer.Config{
		Dir:        a.dir,
		Store:      a.store,
		Downloader: downloader,
		Logger:     a.logger,
	})
}
