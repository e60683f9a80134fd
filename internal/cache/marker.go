package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/macos-fetcher/internal/logger"
)

// markerFilename marks that a download into this cache root is in progress.
const markerFilename = "macos-fetcher-download.lock"

// markerPermissions is the mode for the marker file.
const markerPermissions = 0o644

// errDownloadInProgress indicates another fetcher process owns the cache root.
var errDownloadInProgress = errors.New("another download into this cache root is already running")

// runMarker is a PID-stamped lock file. It is advisory: a marker whose owner
// process is gone is reclaimed instead of blocking forever.
type runMarker struct {
	path string
}

func newRunMarker(root string) *runMarker {
	return &runMarker{
		path: filepath.Join(root, markerFilename),
	}
}

// acquire creates the marker exclusively, reclaiming a stale one when its
// owner process is gone.
func (m *runMarker) acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(m.path), cacheDirPermissions); err != nil {
		return fmt.Errorf("create cache root: %w", err)
	}

	err := m.create()
	if err == nil {
		return nil
	}

	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("write download marker: %w", err)
	}

	contents, readErr := os.ReadFile(m.path)
	if readErr != nil && !errors.Is(readErr, os.ErrNotExist) {
		return fmt.Errorf("read download marker: %w", readErr)
	}

	if readErr == nil {
		pid, parseErr := strconv.Atoi(strings.TrimSpace(string(contents)))
		if parseErr == nil && processAlive(pid) {
			return fmt.Errorf("%w (pid %d)", errDownloadInProgress, pid)
		}

		logger.InfoKV(ctx, "Reclaiming stale download marker", "path", m.path)

		if removeErr := os.Remove(m.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("remove stale marker: %w", removeErr)
		}
	}

	if err = m.create(); err != nil {
		// Another process recreated the marker between the reclaim and
		// this create.
		if errors.Is(err, os.ErrExist) {
			return errDownloadInProgress
		}

		return fmt.Errorf("write download marker: %w", err)
	}

	return nil
}

// create writes a PID-stamped marker, failing when one already exists.
func (m *runMarker) create() error {
	file, err := os.OpenFile(m.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, markerPermissions)
	if err != nil {
		return err
	}

	if _, err = file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

// release removes the marker; failure to do so is logged, not fatal.
func (m *runMarker) release(ctx context.Context) {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove download marker", "path", m.path, "error", err)
	}
}

// processAlive reports whether a process with the PID still exists.
func processAlive(pid int) bool {
	process, err := ps.FindProcess(pid)

	return err == nil && process != nil
}
