package diskimage

import (
	"context"
	"errors"
	"fmt"

	"howett.net/plist"

	"github.com/oshokin/macos-fetcher/internal/execution"
	"github.com/oshokin/macos-fetcher/internal/logger"
)

// Mounter attaches and detaches disk images through hdiutil.
type Mounter struct {
	// runner executes hdiutil invocations.
	runner execution.Runner
	// tool is the path to the hdiutil binary.
	tool string
}

// systemEntity is one entry of hdiutil's system-entities array.
// Only attached volumes carry a mount point.
type systemEntity struct {
	MountPoint string `plist:"mount-point"`
}

// attachedImage is one entry of `hdiutil info -plist` images array.
type attachedImage struct {
	ImagePath      string         `plist:"image-path"`
	SystemEntities []systemEntity `plist:"system-entities"`
}

// mountInfo is the top-level structure of `hdiutil info -plist`.
type mountInfo struct {
	Images []attachedImage `plist:"images"`
}

// attachResult is the top-level structure of `hdiutil attach -plist`.
type attachResult struct {
	SystemEntities []systemEntity `plist:"system-entities"`
}

// ErrNoMountPoint is returned when an attach succeeds but exposes no
// mountable entity.
var ErrNoMountPoint = errors.New("no mount point in attach output")

// NewMounter returns a Mounter using the provided runner and hdiutil path.
func NewMounter(runner execution.Runner, tool string) *Mounter {
	return &Mounter{
		runner: runner,
		tool:   tool,
	}
}

// MountPointFor reports the current mount point of the image, or false when
// the image is not attached.
func (m *Mounter) MountPointFor(ctx context.Context, imagePath string) (string, bool, error) {
	output, err := m.runner.Output(ctx, m.tool, "info", "-plist")
	if err != nil {
		return "", false, fmt.Errorf("query mounts: %w", err)
	}

	var info mountInfo
	if _, err = plist.Unmarshal(output, &info); err != nil {
		return "", false, fmt.Errorf("decode mount info: %w", err)
	}

	for _, image := range info.Images {
		if image.ImagePath != imagePath {
			continue
		}

		for _, entity := range image.SystemEntities {
			if entity.MountPoint != "" {
				return entity.MountPoint, true, nil
			}
		}
	}

	return "", false, nil
}

// Mount attaches the image and returns its mount point. An image that is
// already attached is not attached twice; the existing mount point is
// returned instead.
func (m *Mounter) Mount(ctx context.Context, imagePath string) (string, error) {
	existing, mounted, err := m.MountPointFor(ctx, imagePath)
	if err != nil {
		return "", err
	}

	if mounted {
		logger.DebugKV(ctx, "Image already attached", "image", imagePath, "mount_point", existing)
		return existing, nil
	}

	output, err := m.runner.Output(ctx, m.tool, "attach", imagePath, "-nobrowse", "-plist")
	if err != nil {
		return "", fmt.Errorf("attach %s: %w", imagePath, err)
	}

	var result attachResult
	if _, err = plist.Unmarshal(output, &result); err != nil {
		return "", fmt.Errorf("decode attach output: %w", err)
	}

	for _, entity := range result.SystemEntities {
		if entity.MountPoint != "" {
			return entity.MountPoint, nil
		}
	}

	return "", fmt.Errorf("attach %s: %w", imagePath, ErrNoMountPoint)
}

// Unmount force-detaches the volume at the provided mount path.
func (m *Mounter) Unmount(ctx context.Context, mountPath string) error {
	if err := m.runner.Run(ctx, m.tool, "detach", mountPath, "-force"); err != nil {
		return fmt.Errorf("detach %s: %w", mountPath, err)
	}

	return nil
}
