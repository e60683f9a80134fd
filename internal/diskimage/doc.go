// Package diskimage attaches, detaches and inspects disk images by driving
// the hdiutil utility.
//
// Mount is idempotent: an image that is already attached yields its existing
// mount point instead of a second attach. Detach failures are surfaced to the
// caller but are expected to be treated as best-effort cleanup.
package diskimage
