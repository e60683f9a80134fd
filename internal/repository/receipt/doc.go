// Package receipt persists a record of the last successful fetch next to the
// cached installer.
//
// The receipt captures what was downloaded, when, and by whom, giving the
// packaging pipeline an audit trail without re-reading bundle metadata.
package receipt
