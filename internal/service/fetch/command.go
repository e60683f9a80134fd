package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/macos-fetcher/internal/catalog"
	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/diskimage"
	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/installer"
	"github.com/oshokin/macos-fetcher/internal/logger"
	"github.com/oshokin/macos-fetcher/internal/service/common"
)

// Options are inputs accepted by the fetch entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// LogLevel overrides the configured logging verbosity when parsable.
	LogLevel string
	// Runner overrides subprocess execution (tests); nil spawns real commands.
	Runner execution.Runner
	// Out receives the YAML result document (stdout when nil).
	Out io.Writer
}

// Result is the document handed to the downstream pipeline.
type Result struct {
	// Release is the marketing name of the resolved offering.
	Release string `yaml:"release"`
	// Version is its dotted version string.
	Version string `yaml:"version"`
	// SizeBytes is the advertised installer size converted to bytes.
	SizeBytes int64 `yaml:"size_bytes"`
	// Pathname is the installer bundle in the applications directory.
	Pathname string `yaml:"pathname"`
	// Changed reports whether this run downloaded new content.
	Changed bool `yaml:"changed"`
}

// Run resolves the newest offering, ensures a matching installer bundle is
// present and emits the result.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "macos-fetch")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	common.ApplyLogLevel(opts.LogLevel, cfg.LogLevel)

	runner := opts.Runner
	if runner == nil {
		runner = execution.NewRunner()
	}

	resolver := catalog.NewResolver(runner, cfg.SoftwareUpdateTool)
	mounter := diskimage.NewMounter(runner, cfg.DiskImageTool)
	locator := installer.NewLocator(installer.NewExtractor(mounter))
	downloader := installer.NewDownloader(runner, locator, cfg.SoftwareUpdateTool)

	logger.Info(ctx, "Querying software update for macOS installers")

	update, err := resolver.ResolveLatest(ctx)
	if err != nil {
		return err
	}

	sizeBytes, err := update.SizeBytes()
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Checking %q for the correct installer", cfg.ApplicationsDir)

	pathname, changed, err := downloader.EnsureInstalled(ctx, cfg.ApplicationsDir, installer.Target{
		Release:   update.Name,
		Version:   update.Version,
		SizeBytes: sizeBytes,
	})
	if err != nil {
		return err
	}

	return common.EmitResult(opts.Out, Result{
		Release:   update.Name,
		Version:   update.Version,
		SizeBytes: sizeBytes,
		Pathname:  pathname,
		Changed:   changed,
	})
}
