package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	goversion "github.com/hashicorp/go-version"

	"github.com/oshokin/macos-fetcher/internal/logger"
)

// markerRelativePath distinguishes installer bundles from arbitrary
// applications: only installers ship startosinstall.
const markerRelativePath = "Contents/Resources/startosinstall"

// Locator finds an installer bundle matching a target version.
type Locator struct {
	// extractor reads each candidate bundle's embedded version.
	extractor *Extractor
}

// NewLocator returns a Locator using the provided extractor.
func NewLocator(extractor *Extractor) *Locator {
	return &Locator{
		extractor: extractor,
	}
}

// FindLocal scans the directory for an installer bundle whose embedded
// version equals the target, comparing dotted components ("12.3" equals
// "12.3.0"). Entries are visited in sorted name order, so the first match is
// deterministic when duplicates exist. Returns false when nothing matches.
func (l *Locator) FindLocal(ctx context.Context, directory, targetVersion string) (string, bool, error) {
	target, err := goversion.NewVersion(targetVersion)
	if err != nil {
		return "", false, fmt.Errorf("parse target version %q: %w", targetVersion, err)
	}

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(directory)
	if err != nil {
		return "", false, fmt.Errorf("read directory %s: %w", directory, err)
	}

	for _, entry := range entries {
		bundlePath := filepath.Join(directory, entry.Name())
		if !fileExists(filepath.Join(bundlePath, markerRelativePath)) {
			continue
		}

		localVersion, err := l.extractor.ExtractVersion(ctx, bundlePath)
		if err != nil {
			return "", false, err
		}

		if localVersion == "" {
			continue
		}

		local, err := goversion.NewVersion(localVersion)
		if err != nil {
			logger.WarnKV(ctx, "Skipping bundle with unparsable version",
				"bundle", bundlePath, "version", localVersion)
			continue
		}

		if local.Equal(target) {
			return bundlePath, true, nil
		}
	}

	return "", false, nil
}
