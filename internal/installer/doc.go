// Package installer inspects and materializes macOS installer application
// bundles.
//
// Extractor reads the OS version embedded in a bundle, mounting the shared
// support image when the direct install-info descriptor is absent. Locator
// scans a directory for a bundle matching a target version. Downloader wraps
// `softwareupdate --fetch-full-installer` and confirms the download actually
// produced a matching bundle.
package installer
