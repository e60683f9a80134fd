// Package release resolves the newest full installer offered by the update
// catalog and reports it without downloading anything.
//
// The emitted size is the raw catalog string (e.g. "9453092K"); downstream
// consumers that need bytes use the fetch service instead.
package release
