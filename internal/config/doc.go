// Package config defines run settings used by the fetcher binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds filesystem locations (applications directory, cache
// root) and the paths of the external tools the fetcher drives.
package config
