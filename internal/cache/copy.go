package cache

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// copyBundle recursively copies an installer bundle, preserving file modes
// and symlinks. Installer bundles link freely inside themselves, so symlinks
// are recreated rather than followed.
func copyBundle(source, destination string) error {
	return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relative := strings.TrimPrefix(path, source)
		target := filepath.Join(destination, relative)

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		switch {
		case entry.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			return copySymlink(path, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copySymlink(path, target string) error {
	destination, err := os.Readlink(path)
	if err != nil {
		return fmt.Errorf("read link %s: %w", path, err)
	}

	return os.Symlink(destination, target)
}

func copyFile(path, target string, mode fs.FileMode) error {
	source, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer source.Close()

	destination, err := os.OpenFile(filepath.Clean(target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	if _, err = io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("copy %s: %w", path, err)
	}

	return destination.Close()
}
