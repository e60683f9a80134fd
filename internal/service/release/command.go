package release

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/macos-fetcher/internal/catalog"
	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/logger"
	"github.com/oshokin/macos-fetcher/internal/service/common"
)

// Options are inputs accepted by the release entry point.
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
	// Release is the marketing name of the newest offering.
	Release string `yaml:"release"`
	// Version is its dotted version string.
	Version string `yaml:"version"`
	// Size is the raw catalog size string, kilo-suffixed.
	Size string `yaml:"size"`
}

// Run resolves the newest catalog offering and emits it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "macos-release")

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

	logger.Info(ctx, "Querying software update for macOS installers")

	update, err := resolver.ResolveLatest(ctx)
	if err != nil {
		return err
	}

	return common.EmitResult(opts.Out, Result{
		Release: update.Name,
		Version: update.Version,
		Size:    update.Size,
	})
}
