package toolkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// EnvBrowsersPath is the variable the Playwright CLI reads to locate browser binaries.
const EnvBrowsersPath = "PLAYWRIGHT_BROWSERS_PATH"

// Toolkit abstracts the browser automation toolkit being provisioned.
type Toolkit interface {
	// EnsureDriver installs the toolkit runtime and CLI if it is not present.
	EnsureDriver(ctx context.Context) error

	// InstallBrowser downloads the named browser engine into browsersPath.
	InstallBrowser(ctx context.Context, browser, browsersPath string) error

	// InstallDeps installs the OS shared libraries the browser needs.
	InstallDeps(ctx context.Context, browser string) error
}

// Options configures the Playwright toolkit adapter.
type Options struct {
	// DriverDirectory overrides where the node driver is unpacked. Empty uses
	// the playwright-go default under the user cache directory.
	DriverDirectory string
	Verbose         bool
	Stdout          io.Writer
	Stderr          io.Writer
}

// Playwright provisions Playwright through playwright-go.
type Playwright struct {
	opts Options

	mu     sync.Mutex
	driver *playwright.PlaywrightDriver
}

// NewPlaywright creates a Playwright adapter.
func NewPlaywright(opts Options) *Playwright {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Playwright{opts: opts}
}

func (p *Playwright) runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		DriverDirectory:     p.opts.DriverDirectory,
		SkipInstallBrowsers: true,
		Verbose:             p.opts.Verbose,
		Stdout:              p.opts.Stdout,
		Stderr:              p.opts.Stderr,
	}
}

// EnsureDriver installs the node driver and Playwright package. playwright-go
// skips the download when the installed driver version already matches.
func (p *Playwright) EnsureDriver(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := playwright.Install(p.runOptions()); err != nil {
		return fmt.Errorf("failed to install playwright driver: %w", err)
	}

	driver, err := playwright.NewDriver(p.runOptions())
	if err != nil {
		return fmt.Errorf("failed to load playwright driver: %w", err)
	}
	p.driver = driver
	return nil
}

// InstallBrowser runs `playwright install <browser>`. The browsers path is set on
// the child process only; the calling process environment is left untouched.
func (p *Playwright) InstallBrowser(ctx context.Context, browser, browsersPath string) error {
	cmd, err := p.command("install", browser)
	if err != nil {
		return err
	}
	cmd.Env = BrowserEnv(os.Environ(), browsersPath)

	if err := runCmd(ctx, cmd); err != nil {
		return &CommandError{Command: "playwright install " + browser, Err: err}
	}
	return nil
}

// InstallDeps runs `playwright install-deps <browser>`.
func (p *Playwright) InstallDeps(ctx context.Context, browser string) error {
	cmd, err := p.command("install-deps", browser)
	if err != nil {
		return err
	}

	if err := runCmd(ctx, cmd); err != nil {
		return &CommandError{Command: "playwright install-deps " + browser, Err: err}
	}
	return nil
}

func (p *Playwright) command(args ...string) (*exec.Cmd, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.driver == nil {
		return nil, fmt.Errorf("playwright driver not installed")
	}

	cmd := p.driver.Command(args...)
	cmd.Stdout = p.opts.Stdout
	cmd.Stderr = p.opts.Stderr
	return cmd, nil
}

// BrowserEnv returns environ with the browsers path variable set to path,
// replacing any existing value.
func BrowserEnv(environ []string, path string) []string {
	prefix := EnvBrowsersPath + "="
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		env = append(env, kv)
	}
	return append(env, prefix+path)
}
