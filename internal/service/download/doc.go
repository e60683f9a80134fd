// Package download ensures a versioned cache entry exists for a previously
// resolved release, copying from the applications directory or downloading
// first, and records a receipt for runs that fetched new content.
package download
