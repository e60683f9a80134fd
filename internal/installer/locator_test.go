package installer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFindLocal_MatchesByDottedComparison ensures version equality uses
// dotted components, so "12.3" matches a target of "12.3.0".
func TestFindLocal_MatchesByDottedComparison(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bundle := writeInstallerBundle(t, dir, "Install macOS Monterey.app", "12.3")

	// An ordinary application without the marker must be ignored.
	writeFile(t, filepath.Join(dir, "Safari.app", "Contents", "Info.plist"), "")

	locator := NewLocator(NewExtractor(&fakeMounter{}))

	found, ok, err := locator.FindLocal(context.Background(), dir, "12.3.0")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bundle, found)
}

// TestFindLocal_NoMatch ensures a version mismatch reports false.
func TestFindLocal_NoMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInstallerBundle(t, dir, "Install macOS Monterey.app", "12.3")

	locator := NewLocator(NewExtractor(&fakeMounter{}))

	_, ok, err := locator.FindLocal(context.Background(), dir, "12.4")
	require.NoError(t, err)
	require.False(t, ok)
}

// TestFindLocal_FirstMatchInSortedOrder ensures duplicates resolve to the
// first bundle in sorted directory order.
func TestFindLocal_FirstMatchInSortedOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeInstallerBundle(t, dir, "Install macOS Monterey 1.app", "12.3")
	writeInstallerBundle(t, dir, "Install macOS Monterey 2.app", "12.3")

	locator := NewLocator(NewExtractor(&fakeMounter{}))

	found, ok, err := locator.FindLocal(context.Background(), dir, "12.3")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, found)
}

// TestFindLocal_BadTargetVersion ensures an unparsable target is an error.
func TestFindLocal_BadTargetVersion(t *testing.T) {
	t.Parallel()

	locator := NewLocator(NewExtractor(&fakeMounter{}))

	_, _, err := locator.FindLocal(context.Background(), t.TempDir(), "latest")
	require.Error(t, err)
}

// TestFindLocal_SkipsVersionlessBundles ensures a marked bundle with no
// readable metadata is skipped, not fatal.
func TestFindLocal_SkipsVersionlessBundles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeMarkedBundle(t, dir, "Install Damaged.app")
	want := writeInstallerBundle(t, dir, "Install macOS Monterey.app", "12.3")

	locator := NewLocator(NewExtractor(&fakeMounter{}))

	found, ok, err := locator.FindLocal(context.Background(), dir, "12.3")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, found)
}
