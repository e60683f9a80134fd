// Package execution wraps subprocess invocation behind a narrow interface.
//
// Every component that drives an external tool (softwareupdate, hdiutil)
// receives a Runner at construction, so tests can substitute a fake without
// spawning processes.
package execution
