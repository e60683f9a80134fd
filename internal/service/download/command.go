package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/macos-fetcher/internal/cache"
	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/diskimage"
	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/installer"
	"github.com/oshokin/macos-fetcher/internal/logger"
	"github.com/oshokin/macos-fetcher/internal/repository/receipt"
	"github.com/oshokin/macos-fetcher/internal/service/common"
)

// Options are inputs accepted by the download entry point. The target
// release comes either from explicit Version/Release values or from a
// release-info YAML document produced by macos-release.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// LogLevel overrides the configured logging verbosity when parsable.
	LogLevel string
	// Version is the dotted version string to cache.
	Version string
	// Release is the marketing name used for the bundle filename.
	Release string
	// ReleaseInfoPath points to a YAML document with release/version fields.
	ReleaseInfoPath string
	// Runner overrides subprocess execution (tests); nil spawns real commands.
	Runner execution.Runner
	// Out receives the YAML result document (stdout when nil).
	Out io.Writer
}

// Result is the document handed to the downstream pipeline.
type Result struct {
	// Pathname is the cached installer bundle.
	Pathname string `yaml:"pathname"`
	// CacheDir is the version-keyed directory holding the bundle.
	CacheDir string `yaml:"cache_dir"`
	// Changed reports whether this run materialized new content.
	Changed bool `yaml:"changed"`
}

var errTargetMissing = errors.New("a target version and release are required")

// Run ensures the cache entry exists and emits its location.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "macos-download")

	if err := resolveTarget(opts); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	common.ApplyLogLevel(opts.LogLevel, cfg.LogLevel)

	runner := opts.Runner
	if runner == nil {
		runner = execution.NewRunner()
	}

	mounter := diskimage.NewMounter(runner, cfg.DiskImageTool)
	locator := installer.NewLocator(installer.NewExtractor(mounter))
	downloader := installer.NewDownloader(runner, locator, cfg.SoftwareUpdateTool)
	manager := cache.NewManager(cfg.CacheRoot, cfg.ApplicationsDir, downloader)

	entry, changed, downloaded, err := manager.EnsureCached(ctx, opts.Version, opts.Release)
	if err != nil {
		return err
	}

	// The receipt documents downloads only, not copies of an installer that
	// was already on the system.
	if downloaded {
		if err = recordReceipt(ctx, entry, opts.Release, opts.Version); err != nil {
			return err
		}
	}

	return common.EmitResult(opts.Out, Result{
		Pathname: entry.Path,
		CacheDir: entry.Dir,
		Changed:  changed,
	})
}

// resolveTarget fills Version and Release from the release-info document
// when explicit values were not provided.
func resolveTarget(opts *Options) error {
	if opts.ReleaseInfoPath != "" {
		contents, err := os.ReadFile(filepath.Clean(opts.ReleaseInfoPath))
		if err != nil {
			return fmt.Errorf("read release info: %w", err)
		}

		// Accepts both a macos-release result document and a raw catalog
		// record, which name the release differently.
		var info struct {
			Release string `yaml:"release"`
			Name    string `yaml:"name"`
			Version string `yaml:"version"`
		}

		if err = yaml.Unmarshal(contents, &info); err != nil {
			return fmt.Errorf("unmarshal release info: %w", err)
		}

		if info.Release == "" {
			info.Release = info.Name
		}

		if opts.Version == "" {
			opts.Version = info.Version
		}

		if opts.Release == "" {
			opts.Release = info.Release
		}
	}

	if opts.Version == "" || opts.Release == "" {
		return errTargetMissing
	}

	return nil
}

// recordReceipt persists the fetch receipt inside the cache entry.
func recordReceipt(ctx context.Context, entry cache.Entry, release, version string) error {
	repo := receipt.NewFileRepository(filepath.Join(entry.Dir, receipt.Filename))

	r := receipt.New(release, version, entry.Path)
	if err := repo.Save(ctx, r); err != nil {
		return fmt.Errorf("record receipt: %w", err)
	}

	logger.InfoKV(ctx, "New version of macOS has been downloaded",
		"release", r.Release, "version", r.Version, "download_path", r.Pathname)

	return nil
}
