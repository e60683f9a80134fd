package cache

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunMarker_AcquireIsExclusive ensures two markers over the same root
// cannot both hold the lock, and a released lock can be taken again.
func TestRunMarker_AcquireIsExclusive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	first := newRunMarker(root)
	require.NoError(t, first.acquire(context.Background()))

	second := newRunMarker(root)
	require.ErrorIs(t, second.acquire(context.Background()), errDownloadInProgress)

	first.release(context.Background())

	require.NoError(t, second.acquire(context.Background()))
	second.release(context.Background())
}

// TestRunMarker_ReclaimsDeadOwner ensures a marker whose owner process is
// gone is replaced by one stamped with the current PID.
func TestRunMarker_ReclaimsDeadOwner(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, markerFilename)
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(1<<30)), markerPermissions))

	marker := newRunMarker(root)
	require.NoError(t, marker.acquire(context.Background()))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(contents))

	marker.release(context.Background())
}
