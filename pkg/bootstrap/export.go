package bootstrap

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

// ExportBrowsersPath sets PLAYWRIGHT_BROWSERS_PATH in the current process so
// every child started afterwards inherits it.
func ExportBrowsersPath(path string) error {
	if err := os.Setenv(toolkit.EnvBrowsersPath, path); err != nil {
		return fmt.Errorf("failed to set %s: %w", toolkit.EnvBrowsersPath, err)
	}
	return nil
}

// EnvFileContent renders the shell snippet written by WriteEnvFile.
func EnvFileContent(path string) []byte {
	var b strings.Builder
	b.WriteString("# Written by pwbootstrap\n")
	fmt.Fprintf(&b, "export %s=%s\n", toolkit.EnvBrowsersPath, shellQuote(path))
	return []byte(b.String())
}

// WriteEnvFile writes an export line for path to file so that shells started
// later can source it. An unchanged file is left alone.
func WriteEnvFile(file, path string) error {
	content := EnvFileContent(path)

	if existing, err := os.ReadFile(file); err == nil && bytes.Equal(existing, content) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create env file directory: %w", err)
	}

	tempPath := file + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	// Other users' shells source this file
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set env file permissions: %w", err)
	}
	if err := os.Rename(tempPath, file); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename env file: %w", err)
	}
	return nil
}

// shellQuote wraps s in single quotes for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
