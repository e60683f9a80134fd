package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/macos-fetcher/internal/installer"
	"github.com/oshokin/macos-fetcher/internal/logger"
)

// Entry describes a materialized cache entry.
type Entry struct {
	// Path is the cached installer bundle.
	Path string
	// Dir is the version-keyed directory holding the bundle.
	Dir string
}

// Manager orchestrates cache lookups, local reuse and downloads.
type Manager struct {
	// root is the cache root directory.
	root string
	// applicationsDir is scanned for already-downloaded installers.
	applicationsDir string
	// downloader materializes installers that are absent everywhere.
	downloader *installer.Downloader
}

const (
	// downloadsSubdirectory groups version-keyed entries under the root.
	downloadsSubdirectory = "downloads"

	// cacheDirPermissions is the mode for created cache directories.
	cacheDirPermissions = 0o755
)

// NewManager returns a Manager for the given cache root and applications
// directory.
func NewManager(root, applicationsDir string, downloader *installer.Downloader) *Manager {
	return &Manager{
		root:            root,
		applicationsDir: applicationsDir,
		downloader:      downloader,
	}
}

// EntryFor computes the entry locations for a version and release without
// touching the filesystem.
func (m *Manager) EntryFor(version, release string) Entry {
	dir := filepath.Join(m.root, downloadsSubdirectory, version)

	return Entry{
		Path: filepath.Join(dir, fmt.Sprintf("Install %s.app", release)),
		Dir:  dir,
	}
}

// EnsureCached guarantees a cache entry exists for the version and returns
// it. The first boolean reports whether new content was materialized this
// run; the second whether a download happened, as opposed to a copy of a
// bundle already in the applications directory.
//
// An existing entry is trusted by path alone; its contents are not
// re-verified, so a partially copied entry would be accepted.
func (m *Manager) EnsureCached(ctx context.Context, version, release string) (Entry, bool, bool, error) {
	entry := m.EntryFor(version, release)

	if _, err := os.Stat(entry.Path); err == nil {
		logger.Infof(ctx, "Using cached version at %s", entry.Path)
		return entry, false, false, nil
	}

	logger.Infof(ctx, "No cached installer found. Checking %q for the correct installer", m.applicationsDir)

	marker := newRunMarker(m.root)

	if err := marker.acquire(ctx); err != nil {
		return Entry{}, false, false, err
	}
	defer marker.release(ctx)

	source, downloaded, err := m.downloader.EnsureInstalled(ctx, m.applicationsDir, installer.Target{
		Release: release,
		Version: version,
	})
	if err != nil {
		return Entry{}, false, false, err
	}

	logger.Info(ctx, "Creating copy for cache")

	if err = os.MkdirAll(entry.Dir, cacheDirPermissions); err != nil {
		return Entry{}, false, false, fmt.Errorf("create cache dir: %w", err)
	}

	if err = copyBundle(source, entry.Path); err != nil {
		return Entry{}, false, false, fmt.Errorf("copy installer into cache: %w", err)
	}

	return entry, true, downloaded, nil
}
