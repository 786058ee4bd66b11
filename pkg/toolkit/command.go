package toolkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// CommandRunner runs a single shell command to completion.
type CommandRunner interface {
	Run(ctx context.Context, command string) error
}

// ShellRunner executes commands through `sh -c`, the same way a provisioning
// script would. Output is streamed to Stdout and Stderr.
type ShellRunner struct {
	Shell  string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner creates a runner that writes command output to the given writers.
// Nil writers discard output.
func NewShellRunner(stdout, stderr io.Writer) *ShellRunner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &ShellRunner{
		Shell:  "sh",
		Stdout: stdout,
		Stderr: stderr,
	}
}

// Run executes command and returns a *CommandError when it fails.
func (r *ShellRunner) Run(ctx context.Context, command string) error {
	if command == "" {
		return fmt.Errorf("empty command")
	}

	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{Command: command, Err: err}
	}
	return nil
}

// CommandError reports a failed external command.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status carried by err. Errors that did not come
// from a process exit map to 1, and nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}

// MissingBinaries returns the names from bins that cannot be found on PATH.
func MissingBinaries(bins []string) []string {
	missing := make([]string, 0)
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	return missing
}

// runCmd starts cmd and waits for it, killing the process if ctx is done first.
func runCmd(ctx context.Context, cmd *exec.Cmd) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
		return ctx.Err()
	}
}
