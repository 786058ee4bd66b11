package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

// fakeToolkit mimics the Playwright CLI: InstallBrowser drops a versioned
// build directory into the browsers path.
type fakeToolkit struct {
	mu    sync.Mutex
	calls []string

	driverErr  error
	browserErr error
	depsErr    error
	// skipBuild makes InstallBrowser succeed without writing a build
	skipBuild bool

	// installedPaths records the browsers path handed to each install
	installedPaths []string
}

func (f *fakeToolkit) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeToolkit) EnsureDriver(_ context.Context) error {
	f.record("driver")
	return f.driverErr
}

func (f *fakeToolkit) InstallBrowser(_ context.Context, browser, browsersPath string) error {
	f.record("install " + browser)
	f.mu.Lock()
	f.installedPaths = append(f.installedPaths, browsersPath)
	f.mu.Unlock()

	if f.browserErr != nil {
		return f.browserErr
	}
	prefix := cacheDirPrefixes[browser]
	if prefix == "" || f.skipBuild {
		return nil
	}
	return os.MkdirAll(filepath.Join(browsersPath, prefix+"-1169", "chrome-linux"), 0755)
}

func (f *fakeToolkit) InstallDeps(_ context.Context, browser string) error {
	f.record("install-deps " + browser)
	return f.depsErr
}

func (f *fakeToolkit) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeCommands records package-manager commands instead of running them.
type fakeCommands struct {
	ran []string
	err error
}

func (f *fakeCommands) Run(_ context.Context, command string) error {
	f.ran = append(f.ran, command)
	return f.err
}

var _ toolkit.Toolkit = (*fakeToolkit)(nil)
var _ toolkit.CommandRunner = (*fakeCommands)(nil)

// testConfig returns a valid config rooted in a temp directory.
func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Cache.Root = filepath.Join(t.TempDir(), "home", "appuser", ".cache")
	cfg.Timeout = time.Minute
	return cfg
}

// unsetBrowsersPath clears PLAYWRIGHT_BROWSERS_PATH for the test and restores
// it afterwards.
func unsetBrowsersPath(t *testing.T) {
	t.Helper()
	t.Setenv(toolkit.EnvBrowsersPath, "")
	require.NoError(t, os.Unsetenv(toolkit.EnvBrowsersPath))
}

// exitError produces a real *exec.ExitError with the given status.
func exitError(t *testing.T, code int) error {
	t.Helper()
	err := exec.Command("sh", "-c", "exit "+strconv.Itoa(code)).Run()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	return &toolkit.CommandError{Command: "playwright install chromium", Err: err}
}
