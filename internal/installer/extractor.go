package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"

	"github.com/oshokin/macos-fetcher/internal/logger"
)

// Mounter attaches and detaches disk images. Implemented by diskimage.Mounter.
type Mounter interface {
	Mount(ctx context.Context, imagePath string) (string, error)
	Unmount(ctx context.Context, mountPath string) error
}

const (
	// installInfoRelativePath is the direct version descriptor inside a bundle.
	installInfoRelativePath = "Contents/SharedSupport/InstallInfo.plist"

	// sharedSupportRelativePath is the embedded support image inside a bundle.
	sharedSupportRelativePath = "Contents/SharedSupport/SharedSupport.dmg"

	// mobileAssetRelativePath locates the asset descriptor inside a mounted
	// support image.
	mobileAssetRelativePath = "com_apple_MobileAsset_MacSoftwareUpdate/com_apple_MobileAsset_MacSoftwareUpdate.xml"
)

// installInfo models the portion of InstallInfo.plist the extractor reads.
type installInfo struct {
	SystemImageInfo struct {
		Version string `plist:"version"`
	} `plist:"System Image Info"`
}

// mobileAssetInfo models the asset descriptor inside the support image.
type mobileAssetInfo struct {
	Assets []struct {
		OSVersion string `plist:"OSVersion"`
	} `plist:"Assets"`
}

// Extractor reads the OS version embedded in an installer bundle.
type Extractor struct {
	// mounter attaches the shared support image when needed.
	mounter Mounter
}

// NewExtractor returns an Extractor using the provided mounter.
func NewExtractor(mounter Mounter) *Extractor {
	return &Extractor{
		mounter: mounter,
	}
}

// ExtractVersion returns the OS version embedded in the bundle, or "" when
// the bundle carries no readable version metadata. Absence of metadata and
// malformed descriptors are "no match", not errors; only a failing mount of
// the support image is fatal.
func (e *Extractor) ExtractVersion(ctx context.Context, bundlePath string) (string, error) {
	installInfoPath := filepath.Join(bundlePath, installInfoRelativePath)
	if fileExists(installInfoPath) {
		return readInstallInfoVersion(ctx, installInfoPath), nil
	}

	supportImagePath := filepath.Join(bundlePath, sharedSupportRelativePath)
	if fileExists(supportImagePath) {
		return e.readSupportImageVersion(ctx, supportImagePath)
	}

	return "", nil
}

// readSupportImageVersion mounts the support image, reads the nested asset
// descriptor and guarantees a detach on every exit path.
func (e *Extractor) readSupportImageVersion(ctx context.Context, imagePath string) (string, error) {
	mountPoint, err := e.mounter.Mount(ctx, imagePath)
	if err != nil {
		return "", fmt.Errorf("mount support image: %w", err)
	}

	defer func() {
		if unmountErr := e.mounter.Unmount(ctx, mountPoint); unmountErr != nil {
			// Best-effort cleanup: a stuck volume must not fail the extraction.
			logger.WarnKV(ctx, "Unable to detach support image", "mount_point", mountPoint, "error", unmountErr)
		}
	}()

	contents, err := os.ReadFile(filepath.Join(mountPoint, mobileAssetRelativePath))
	if err != nil {
		return "", nil //nolint:nilerr // Unreadable descriptor means "no match".
	}

	var info mobileAssetInfo
	if _, err = plist.Unmarshal(contents, &info); err != nil {
		return "", nil //nolint:nilerr // Malformed descriptor means "no match".
	}

	if len(info.Assets) == 0 {
		return "", nil
	}

	return info.Assets[0].OSVersion, nil
}

// readInstallInfoVersion reads the nested version key of InstallInfo.plist,
// degrading to "" on any read or parse failure.
func readInstallInfoVersion(ctx context.Context, path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		logger.WarnKV(ctx, "Unable to read install info", "path", path, "error", err)
		return ""
	}

	var info installInfo
	if _, err = plist.Unmarshal(contents, &info); err != nil {
		logger.WarnKV(ctx, "Unable to decode install info", "path", path, "error", err)
		return ""
	}

	return info.SystemImageInfo.Version
}

// fileExists reports whether the path exists as a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	return err == nil && !info.IsDir()
}
