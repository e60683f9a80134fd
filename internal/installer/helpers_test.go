package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// installInfoTemplate is a minimal InstallInfo.plist carrying a version.
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

// mobileAssetTemplate is a minimal MobileAsset descriptor carrying a version.
const mobileAssetTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Assets</key>
	<array>
		<dict>
			<key>OSVersion</key>
			<string>%s</string>
		</dict>
	</array>
</dict>
</plist>`

// fakeMounter satisfies Mounter without touching hdiutil. It serves a single
// prepared mount point and counts attach/detach calls.
type fakeMounter struct {
	mountPoint   string
	mountErr     error
	mountCalls   int
	unmountCalls int
}

func (m *fakeMounter) Mount(_ context.Context, _ string) (string, error) {
	m.mountCalls++

	if m.mountErr != nil {
		return "", m.mountErr
	}

	return m.mountPoint, nil
}

func (m *fakeMounter) Unmount(_ context.Context, _ string) error {
	m.unmountCalls++
	return nil
}

// writeInstallerBundle creates a bundle with the startosinstall marker and a
// direct InstallInfo.plist descriptor.
func writeInstallerBundle(t *testing.T, dir, name, version string) string {
	t.Helper()

	bundlePath := writeMarkedBundle(t, dir, name)
	writeFile(t, filepath.Join(bundlePath, installInfoRelativePath), fmt.Sprintf(installInfoTemplate, version))

	return bundlePath
}

// writeMarkedBundle creates a bundle carrying only the installer marker.
func writeMarkedBundle(t *testing.T, dir, name string) string {
	t.Helper()

	bundlePath := filepath.Join(dir, name)
	writeFile(t, filepath.Join(bundlePath, markerRelativePath), "")

	return bundlePath
}

// writeSupportImage adds an empty shared support image file to a bundle.
func writeSupportImage(t *testing.T, bundlePath string) {
	t.Helper()
	writeFile(t, filepath.Join(bundlePath, sharedSupportRelativePath), "")
}

// writeMountedAsset prepares a fake mount point containing the asset descriptor.
func writeMountedAsset(t *testing.T, version string) string {
	t.Helper()

	mountPoint := t.TempDir()
	writeFile(t, filepath.Join(mountPoint, mobileAssetRelativePath), fmt.Sprintf(mobileAssetTemplate, version))

	return mountPoint
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}
