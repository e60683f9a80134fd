// Package common holds helpers shared by several services.
//
// It renders the YAML result documents the fetcher binaries hand to the
// downstream packaging pipeline.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
