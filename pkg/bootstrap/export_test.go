package bootstrap

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

func TestExportBrowsersPath(t *testing.T) {
	unsetBrowsersPath(t)

	require.NoError(t, ExportBrowsersPath("/home/appuser/.cache/ms-playwright"))
	assert.Equal(t, "/home/appuser/.cache/ms-playwright", os.Getenv(toolkit.EnvBrowsersPath))

	// Visible to children of this process
	out, err := exec.Command("sh", "-c", "printf %s \"$PLAYWRIGHT_BROWSERS_PATH\"").Output()
	require.NoError(t, err)
	assert.Equal(t, "/home/appuser/.cache/ms-playwright", string(out))
}

func TestEnvFileContent(t *testing.T) {
	content := string(EnvFileContent("/home/appuser/.cache/ms-playwright"))
	assert.Contains(t, content, "export PLAYWRIGHT_BROWSERS_PATH='/home/appuser/.cache/ms-playwright'\n")

	quoted := string(EnvFileContent("/tmp/it's here"))
	assert.Contains(t, quoted, `'/tmp/it'\''s here'`)
}

func TestWriteEnvFile_SourceableByShell(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "profile.d", "playwright.sh")
	path := filepath.Join(dir, "odd 'cache'", "ms-playwright")

	require.NoError(t, WriteEnvFile(file, path))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	cmd := exec.Command("sh", "-c", ". \"$1\" && printf %s \"$PLAYWRIGHT_BROWSERS_PATH\"", "sh", file)
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	out, err := cmd.Output()
	require.NoError(t, err)
	assert.Equal(t, path, string(out))
}

func TestWriteEnvFile_Idempotent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "playwright.sh")

	require.NoError(t, WriteEnvFile(file, "/cache/ms-playwright"))
	first, err := os.ReadFile(file)
	require.NoError(t, err)

	require.NoError(t, WriteEnvFile(file, "/cache/ms-playwright"))
	second, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, WriteEnvFile(file, "/other/ms-playwright"))
	third, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(third), "/other/ms-playwright"))

	_, err = os.Stat(file + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
