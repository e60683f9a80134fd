package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/logger"
)

// Downloader fetches full installers through softwareupdate and verifies the
// result landed in the applications directory.
type Downloader struct {
	// runner executes softwareupdate invocations.
	runner execution.Runner
	// locator confirms a matching bundle exists after the fetch.
	locator *Locator
	// tool is the path to the softwareupdate binary.
	tool string
}

// Target identifies the installer to materialize.
type Target struct {
	// Release is the marketing name of the release.
	Release string
	// Version is its dotted version string.
	Version string
	// SizeBytes is the advertised download size; zero when unknown.
	SizeBytes int64
}

// ErrDownloadUnsuccessful is returned when the fetch completed but no
// matching bundle materialized.
var ErrDownloadUnsuccessful = errors.New("download was not successful or cannot find downloaded item")

// NewDownloader returns a Downloader using the provided runner, locator and
// tool path.
func NewDownloader(runner execution.Runner, locator *Locator, tool string) *Downloader {
	return &Downloader{
		runner:  runner,
		locator: locator,
		tool:    tool,
	}
}

// EnsureInstalled returns the path of an installer bundle for the target in
// the applications directory, downloading it first when absent. The second
// return value reports whether a download happened.
func (d *Downloader) EnsureInstalled(ctx context.Context, applicationsDir string, target Target) (string, bool, error) {
	bundlePath, found, err := d.locator.FindLocal(ctx, applicationsDir, target.Version)
	if err != nil {
		return "", false, err
	}

	if found {
		logger.Infof(ctx, "Version already on system at %s", bundlePath)
		return bundlePath, false, nil
	}

	if err = d.Download(ctx, target); err != nil {
		return "", false, err
	}

	bundlePath, found, err = d.locator.FindLocal(ctx, applicationsDir, target.Version)
	if err != nil {
		return "", false, err
	}

	if !found {
		return "", false, ErrDownloadUnsuccessful
	}

	return bundlePath, true, nil
}

// Download fetches the full installer for the target.
func (d *Downloader) Download(ctx context.Context, target Target) error {
	if target.SizeBytes > 0 {
		logger.Infof(ctx, "Downloading macOS %s %s (Size: %d)", target.Release, target.Version, target.SizeBytes)
	} else {
		logger.Infof(ctx, "Downloading macOS %s %s", target.Release, target.Version)
	}

	err := d.runner.Run(ctx, d.tool, "--fetch-full-installer", "--full-installer-version", target.Version)
	if err != nil {
		return fmt.Errorf("fetch full installer: %w", err)
	}

	return nil
}
