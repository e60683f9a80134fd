package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/macos-fetcher/internal/config"
	"github.com/oshokin/macos-fetcher/internal/service/fetch"
	"github.com/oshokin/macos-fetcher/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured logging verbosity.
	logLevel string

	// rootCmd represents the base command for resolving and downloading the
	// newest installer in one run.
	rootCmd = &cobra.Command{
		Use:   "macos-fetch",
		Short: "Resolve and download the newest macOS full installer.",
		Long: `Queries softwareupdate for currently offered macOS full installers,
ensures the newest one is present in the applications directory (downloading
it when absent) and prints a YAML document with release, version, size in
bytes, installer path and whether new content was fetched.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &fetch.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
			}

			return fetch.Run(ctx, options)
		},
	}
)

// Execute runs the macos-fetch CLI and exits with non-zero status on error.
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
