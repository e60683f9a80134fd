package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/service/release"
	"github.com/oshokin/macos-fetcher/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured logging verbosity.
	logLevel string

	// rootCmd represents the base command for resolving the newest installer.
	rootCmd = &cobra.Command{
		Use:   "macos-release",
		Short: "Resolve the newest macOS full installer offered by the update catalog.",
		Long: `Queries softwareupdate for currently offered macOS full installers and
prints the newest one as a YAML document (release, version, size).

Nothing is downloaded; the size field keeps the raw catalog string. Pipe the
output into macos-download to materialize a cached copy.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &release.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
			}

			return release.Run(ctx, options)
		},
	}
)

// Execute runs the macos-release CLI and exits with non-zero status on error.
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
}
