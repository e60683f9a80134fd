// Package catalog resolves the full-installer offerings of the software
// update catalog.
//
// It drives `softwareupdate --list-full-installers`, parses the line-oriented
// listing into update records and picks the highest offered version using
// dotted-component ordering ("12.10" sorts above "12.9").
package catalog
