package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/service/download"
	"github.com/oshokin/macos-fetcher/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured logging verbosity.
	logLevel string
	// targetVersion is the dotted version string to cache.
	targetVersion string
	// targetRelease is the marketing name used for the bundle filename.
	targetRelease string
	// releaseInfoPath points to a YAML document produced by macos-release.
	releaseInfoPath string

	// rootCmd represents the base command for caching a resolved installer.
	rootCmd = &cobra.Command{
		Use:   "macos-download",
		Short: "Download and cache a macOS full installer for a resolved release.",
		Long: `Ensures a versioned cache entry exists for the given release, copying the
installer from the applications directory or downloading it first.

The target release comes from --target-version/--release, or from a YAML
document produced by macos-release via --release-info. Prints a YAML document
with the cached installer path, its cache directory and whether new content
was materialized this run.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &download.Options{
				ConfigPath:      configPath,
				LogLevel:        logLevel,
				Version:         targetVersion,
				Release:         targetRelease,
				ReleaseInfoPath: releaseInfoPath,
			}

			return download.Run(ctx, options)
		},
	}
)

// Execute runs the macos-download CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "logging level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&targetVersion, "target-version", "t", "", "dotted version of the installer to cache")
	rootCmd.Flags().StringVarP(&targetRelease, "release", "r", "", "marketing name of the release, e.g. \"macOS Monterey\"")
	rootCmd.Flags().StringVarP(&releaseInfoPath, "release-info", "i", "", "path to YAML release info from macos-release")
}
