package execution

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands. All invocations are blocking; callers
// cancel through the context.
type Runner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Run runs the command without capturing stdout.
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// NewRunner returns a Runner that spawns real subprocesses.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Output runs the command and returns its stdout,
// folding captured stderr into the error on failure.
func (*ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.Output()
	if err != nil {
		return nil, commandError(name, args, stderr.String(), err)
	}

	return stdout, nil
}

// Run runs the command without capturing stdout.
func (*ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return commandError(name, args, stderr.String(), err)
	}

	return nil
}

// commandError wraps a subprocess failure with enough detail to diagnose it.
func commandError(name string, args []string, stderr string, err error) error {
	command := name
	if len(args) > 0 {
		command += " " + strings.Join(args, " ")
	}

	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("run %q: %w: %s", command, err, stderr)
	}

	return fmt.Errorf("run %q: %w", command, err)
}
