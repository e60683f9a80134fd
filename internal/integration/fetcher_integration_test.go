// Package integration exercises complete service workflows with a scripted
// runner, so no real softwareupdate or hdiutil is ever spawned.
package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/repository/receipt"
	"github.com/oshokin/macos-fetcher/internal/service/download"
	"github.com/oshokin/macos-fetcher/internal/service/fetch"
	"github.com/oshokin/macos-fetcher/internal/service/release"
)

const (
	listCommand  = config.DefaultSoftwareUpdateTool + " --list-full-installers"
	fetchCommand = config.DefaultSoftwareUpdateTool + " --fetch-full-installer --full-installer-version 12.3"
)

const sampleListing = `Finding available software
Software Update found the following full installers:
* Title: macOS Monterey, Version: 12.3, Size: 9453092K
* Title: macOS Big Sur, Version: 11.6.5, Size: 12125478K
`

const installInfoTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>System Image Info</key>
	<dict>
		<key>version</key>
		<string>%s</string>
	</dict>
</dict>
</plist>`

// writeSettings persists a config pointing every path into the test sandbox.
func writeSettings(t *testing.T, applicationsDir, cacheRoot string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, &config.Config{
		ApplicationsDir: applicationsDir,
		CacheRoot:       cacheRoot,
	}))

	return path
}

// writeInstallerBundle creates a marked bundle with a direct descriptor.
func writeInstallerBundle(t *testing.T, dir, name, version string) string {
	t.Helper()

	bundlePath := filepath.Join(dir, name)
	writeFile(t, filepath.Join(bundlePath, "Contents", "Resources", "startosinstall"), "")
	writeFile(t,
		filepath.Join(bundlePath, "Contents", "SharedSupport", "InstallInfo.plist"),
		fmt.Sprintf(installInfoTemplate, version))

	return bundlePath
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// TestReleaseThenDownload_Workflow pipes macos-release output into the
// download service and verifies caching, receipts and idempotence.
func TestReleaseThenDownload_Workflow(t *testing.T) {
	t.Parallel()

	applications := t.TempDir()
	cacheRoot := filepath.Join(t.TempDir(), "cache")
	settingsPath := writeSettings(t, applications, cacheRoot)

	runner := execution.NewFakeRunner()
	runner.Responses[listCommand] = []byte(sampleListing)
	runner.Hooks[fetchCommand] = func() {
		writeInstallerBundle(t, applications, "Install macOS Monterey.app", "12.3")
	}

	// Resolve the newest release.
	var releaseOut bytes.Buffer

	err := release.Run(context.Background(), &release.Options{
		ConfigPath: settingsPath,
		Runner:     runner,
		Out:        &releaseOut,
	})
	require.NoError(t, err)

	var resolved release.Result
	require.NoError(t, yaml.Unmarshal(releaseOut.Bytes(), &resolved))
	require.Equal(t, "12.3", resolved.Version)
	require.Equal(t, "macOS Monterey", resolved.Release)
	require.Equal(t, "9453092K", resolved.Size)

	// Feed the release document into the download service.
	releaseInfoPath := filepath.Join(t.TempDir(), "release.yaml")
	require.NoError(t, os.WriteFile(releaseInfoPath, releaseOut.Bytes(), 0o644))

	var downloadOut bytes.Buffer

	err = download.Run(context.Background(), &download.Options{
		ConfigPath:      settingsPath,
		ReleaseInfoPath: releaseInfoPath,
		Runner:          runner,
		Out:             &downloadOut,
	})
	require.NoError(t, err)

	var result download.Result
	require.NoError(t, yaml.Unmarshal(downloadOut.Bytes(), &result))
	require.True(t, result.Changed)
	require.DirExists(t, result.Pathname)
	require.Equal(t, filepath.Join(cacheRoot, "downloads", "12.3"), result.CacheDir)
	require.Equal(t, 1, runner.CallCount(fetchCommand))

	// A receipt documents the fetch.
	repo := receipt.NewFileRepository(filepath.Join(result.CacheDir, receipt.Filename))

	saved, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "12.3", saved.Version)
	require.Equal(t, "macOS Monterey", saved.Release)

	// A second run hits the cache: no new download, no new copy.
	downloadOut.Reset()

	err = download.Run(context.Background(), &download.Options{
		ConfigPath:      settingsPath,
		ReleaseInfoPath: releaseInfoPath,
		Runner:          runner,
		Out:             &downloadOut,
	})
	require.NoError(t, err)

	require.NoError(t, yaml.Unmarshal(downloadOut.Bytes(), &result))
	require.False(t, result.Changed)
	require.Equal(t, 1, runner.CallCount(fetchCommand))
}

// TestDownload_CopyFromApplicationsWritesNoReceipt verifies a run that only
// copies an installer already on the system records no download receipt.
func TestDownload_CopyFromApplicationsWritesNoReceipt(t *testing.T) {
	t.Parallel()

	applications := t.TempDir()
	writeInstallerBundle(t, applications, "Install macOS Monterey.app", "12.3")

	settingsPath := writeSettings(t, applications, filepath.Join(t.TempDir(), "cache"))
	runner := execution.NewFakeRunner()

	var out bytes.Buffer

	err := download.Run(context.Background(), &download.Options{
		ConfigPath: settingsPath,
		Version:    "12.3",
		Release:    "macOS Monterey",
		Runner:     runner,
		Out:        &out,
	})
	require.NoError(t, err)

	var result download.Result
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &result))
	require.True(t, result.Changed)
	require.DirExists(t, result.Pathname)
	require.Empty(t, runner.Calls)

	repo := receipt.NewFileRepository(filepath.Join(result.CacheDir, receipt.Filename))

	_, err = repo.Load(context.Background())
	require.ErrorIs(t, err, receipt.ErrNotFound)
}

// TestFetch_Workflow verifies the combined resolver+downloader unit and its
// byte-converted size contract.
func TestFetch_Workflow(t *testing.T) {
	t.Parallel()

	applications := t.TempDir()
	bundle := writeInstallerBundle(t, applications, "Install macOS Monterey.app", "12.3")
	settingsPath := writeSettings(t, applications, filepath.Join(t.TempDir(), "cache"))

	runner := execution.NewFakeRunner()
	runner.Responses[listCommand] = []byte(sampleListing)

	var out bytes.Buffer

	err := fetch.Run(context.Background(), &fetch.Options{
		ConfigPath: settingsPath,
		Runner:     runner,
		Out:        &out,
	})
	require.NoError(t, err)

	var result fetch.Result
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &result))
	require.Equal(t, "macOS Monterey", result.Release)
	require.Equal(t, "12.3", result.Version)
	require.Equal(t, int64(9453092000), result.SizeBytes)
	require.Equal(t, bundle, result.Pathname)
	require.False(t, result.Changed)
	require.Zero(t, runner.CallCount(fetchCommand))
}
