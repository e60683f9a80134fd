//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"github.com/oshokin/macos-fetcher/internal/logger"
)

// ApplyLogLevel configures the global logger from the first parsable level,
// letting a command-line flag win over the settings file.
func ApplyLogLevel(levels ...string) {
	for _, level := range levels {
		if level == "" {
			continue
		}

		if parsed, ok := logger.ParseLogLevel(level); ok {
			logger.SetLevel(parsed)
			return
		}
	}
}
