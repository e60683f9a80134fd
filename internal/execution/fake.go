package execution

import (
	"context"
	"fmt"
	"strings"
)

// FakeRunner is a scriptable Runner for tests. Responses are keyed by the
// full command line (name + args joined with spaces); unscripted commands
// fail, so a test sees exactly which invocation surprised it.
type FakeRunner struct {
	// Responses maps command lines to canned stdout.
	Responses map[string][]byte
	// Errors maps command lines to canned failures.
	Errors map[string]error
	// Hooks maps command lines to side effects, letting a test simulate
	// commands that change the filesystem.
	Hooks map[string]func()
	// Calls records every command line in invocation order.
	Calls []string
}

// NewFakeRunner returns an empty scriptable runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string][]byte),
		Errors:    make(map[string]error),
		Hooks:     make(map[string]func()),
	}
}

// Output replays the scripted stdout for the command line.
func (f *FakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	command := commandLine(name, args)
	f.Calls = append(f.Calls, command)

	if hook, ok := f.Hooks[command]; ok {
		hook()
	}

	if err, ok := f.Errors[command]; ok {
		return nil, err
	}

	if response, ok := f.Responses[command]; ok {
		return response, nil
	}

	if _, ok := f.Hooks[command]; ok {
		return nil, nil
	}

	return nil, fmt.Errorf("unscripted command: %q", command)
}

// Run replays the scripted result for the command line.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) error {
	command := commandLine(name, args)
	f.Calls = append(f.Calls, command)

	if hook, ok := f.Hooks[command]; ok {
		hook()
	}

	if err, ok := f.Errors[command]; ok {
		return err
	}

	if _, ok := f.Responses[command]; ok {
		return nil
	}

	if _, ok := f.Hooks[command]; ok {
		return nil
	}

	return fmt.Errorf("unscripted command: %q", command)
}

// CallCount returns how many times the command line was invoked.
func (f *FakeRunner) CallCount(command string) int {
	count := 0

	for _, call := range f.Calls {
		if call == command {
			count++
		}
	}

	return count
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}

	return name + " " + strings.Join(args, " ")
}
