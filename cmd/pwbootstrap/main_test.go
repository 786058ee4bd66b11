package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts := parseFlags([]string{
		"-browser", "firefox",
		"-cache-root", "/home/appuser/.cache",
		"-skip-deps",
		"--", "python", "app.py",
	})

	assert.Equal(t, "firefox", opts.Browser)
	assert.Equal(t, "/home/appuser/.cache", opts.CacheRoot)
	assert.True(t, opts.SkipDeps)
	assert.Equal(t, []string{"python", "app.py"}, opts.Command)
}

func TestParseFlags_NoArguments(t *testing.T) {
	opts := parseFlags(nil)
	assert.Empty(t, opts.ConfigPath)
	assert.Empty(t, opts.Command)
	assert.False(t, opts.ShowVersion)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
browser: webkit
cache:
  root: /from/file
logging:
  verbosity: verbose
`), 0600))

	t.Setenv("PWBOOTSTRAP_CACHE_ROOT", "/from/env")
	t.Setenv("PWBOOTSTRAP_VERBOSITY", "debug")

	cfg, err := loadConfig(&Options{
		ConfigPath: path,
		Verbosity:  "quiet",
		ReportDir:  "/tmp/report",
		SkipDeps:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "webkit", cfg.Browser)
	assert.Equal(t, "/from/env/ms-playwright", cfg.CachePath())
	assert.Equal(t, "quiet", cfg.Logging.Verbosity)
	assert.True(t, cfg.Report.Enabled)
	assert.Equal(t, "/tmp/report", cfg.Report.OutputDir)
	assert.False(t, cfg.Install.WithDeps)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(&Options{Browser: "netscape"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported browser")

	_, err = loadConfig(&Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestRun_ConfigErrorExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), &Options{CacheRoot: "relative/path"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "cache root must be an absolute path")
}

func TestExecCommand(t *testing.T) {
	t.Setenv("PLAYWRIGHT_BROWSERS_PATH", "/cache/ms-playwright")

	var stdout, stderr bytes.Buffer
	code := execCommand(context.Background(), []string{"sh", "-c", "printf %s \"$PLAYWRIGHT_BROWSERS_PATH\""}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "/cache/ms-playwright", stdout.String())

	code = execCommand(context.Background(), []string{"sh", "-c", "exit 5"}, &stdout, &stderr)
	assert.Equal(t, 5, code)

	code = execCommand(context.Background(), []string{"pwbootstrap-no-such-binary"}, &stdout, &stderr)
	assert.Equal(t, 127, code)
	assert.Contains(t, stderr.String(), "failed to run")
}
