// Package toolkit wraps the external programs a bootstrap run shells out to:
// the Playwright CLI (through playwright-go) and the system package manager.
//
// Every adapter treats the exit status of the child process as authoritative.
// A non-zero exit surfaces as a *CommandError wrapping the *exec.ExitError, so
// callers can recover the child exit status with ExitCode.
package toolkit
