package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds run parameters shared by the fetcher binaries.
// It replaces implicit environment lookups: every component receives the
// values it needs at construction time.
type Config struct {
	// ApplicationsDir is where softwareupdate materializes installer bundles.
	ApplicationsDir string `yaml:"applications_dir"`
	// CacheRoot is the directory under which versioned download caches live.
	CacheRoot string `yaml:"cache_root"`
	// SoftwareUpdateTool is the path to the softwareupdate binary.
	SoftwareUpdateTool string `yaml:"softwareupdate_path"`
	// DiskImageTool is the path to the hdiutil binary.
	DiskImageTool string `yaml:"hdiutil_path"`
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for fetcher settings.
	DefaultConfigFilename = "macos-fetcher-settings.yaml"

	// DefaultApplicationsDir is where macOS installers land after a fetch.
	DefaultApplicationsDir = "/Applications"

	// DefaultSoftwareUpdateTool is the stock location of the catalog tool.
	DefaultSoftwareUpdateTool = "/usr/sbin/softwareupdate"

	// DefaultDiskImageTool is the stock location of the disk-image utility.
	DefaultDiskImageTool = "/usr/bin/hdiutil"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// cacheSubdirectory is appended to the user cache dir when no cache root is set.
	cacheSubdirectory = "macos-fetcher"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRelativeCacheRoot is returned when the cache root is not absolute.
	errRelativeCacheRoot = errors.New("cache root must be an absolute path")
)

// Default returns a configuration populated with stock tool locations and
// a per-user cache root.
func Default() (*Config, error) {
	cfg := new(Config)
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads configuration from the provided path and validates essential fields.
// A missing path yields defaults rather than an error so the binaries run
// usefully without a settings file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults for unset fields and checks the rest.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ApplicationsDir == "" {
		cfg.ApplicationsDir = DefaultApplicationsDir
	}

	if cfg.SoftwareUpdateTool == "" {
		cfg.SoftwareUpdateTool = DefaultSoftwareUpdateTool
	}

	if cfg.DiskImageTool == "" {
		cfg.DiskImageTool = DefaultDiskImageTool
	}

	if cfg.CacheRoot == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve user cache dir: %w", err)
		}

		cfg.CacheRoot = filepath.Join(userCacheDir, cacheSubdirectory)
	}

	if !filepath.IsAbs(cfg.CacheRoot) {
		return errRelativeCacheRoot
	}

	return nil
}
