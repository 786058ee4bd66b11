package toolkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellRunner_Run(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantErr  bool
		wantCode int
		wantOut  string
	}{
		{name: "success", command: "echo hello", wantOut: "hello\n"},
		{name: "exit status propagated", command: "exit 3", wantErr: true, wantCode: 3},
		{name: "compound command", command: "true && echo ok", wantOut: "ok\n"},
		{name: "empty command", command: "", wantErr: true, wantCode: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			runner := NewShellRunner(&stdout, nil)

			err := runner.Run(context.Background(), tt.command)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, stdout.String())
		})
	}
}

func TestShellRunner_Env(t *testing.T) {
	var stdout bytes.Buffer
	runner := NewShellRunner(&stdout, nil)
	runner.Env = []string{"PWBOOTSTRAP_TEST_VALUE=abc"}

	require.NoError(t, runner.Run(context.Background(), "printf %s \"$PWBOOTSTRAP_TEST_VALUE\""))
	assert.Equal(t, "abc", stdout.String())
}

func TestShellRunner_CommandError(t *testing.T) {
	runner := NewShellRunner(nil, nil)
	err := runner.Run(context.Background(), "exit 7")

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "exit 7", cmdErr.Command)
	assert.Contains(t, cmdErr.Error(), "exit 7")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))

	err := exec.Command("sh", "-c", "exit 42").Run()
	require.Error(t, err)
	assert.Equal(t, 42, ExitCode(fmt.Errorf("wrapped: %w", &CommandError{Command: "x", Err: err})))
}

func TestMissingBinaries(t *testing.T) {
	missing := MissingBinaries([]string{"sh", "pwbootstrap-definitely-not-installed"})
	assert.Equal(t, []string{"pwbootstrap-definitely-not-installed"}, missing)
	assert.Empty(t, MissingBinaries(nil))
}

func TestRunCmd_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := runCmd(ctx, exec.Command("sleep", "10"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestBrowserEnv(t *testing.T) {
	env := BrowserEnv([]string{"HOME=/root", EnvBrowsersPath + "=/old", "PATH=/bin"}, "/new/ms-playwright")
	assert.Equal(t, []string{"HOME=/root", "PATH=/bin", EnvBrowsersPath + "=/new/ms-playwright"}, env)
}

func TestPlaywright_CommandBeforeDriver(t *testing.T) {
	p := NewPlaywright(Options{})
	err := p.InstallBrowser(context.Background(), "chromium", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "driver not installed")

	err = p.InstallDeps(context.Background(), "chromium")
	require.Error(t, err)
}
