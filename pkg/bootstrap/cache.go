package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// cacheDirPrefixes maps a browser name to the directory prefix Playwright uses
// for it inside the browsers path, e.g. chromium-1140. Branded channels
// (chrome, msedge) install system-wide and have no entry.
var cacheDirPrefixes = map[string]string{
	"chromium":                "chromium",
	"chromium-headless-shell": "chromium_headless_shell",
	"firefox":                 "firefox",
	"webkit":                  "webkit",
}

// PrepareCache creates dir (parents get 0755) and sets mode on dir. The mode
// is applied with an explicit chmod so the umask cannot narrow it.
func PrepareCache(dir string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("failed to create cache parent directory: %w", err)
	}
	if err := os.Mkdir(dir, mode); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat cache directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cache path '%s' is not a directory", dir)
	}

	if info.Mode().Perm() == mode {
		return nil
	}
	if err := os.Chmod(dir, mode); err != nil {
		return fmt.Errorf("failed to set cache directory permissions: %w", err)
	}
	return nil
}

// CacheResident reports whether browser is stored inside the browsers path.
func CacheResident(browser string) bool {
	_, ok := cacheDirPrefixes[browser]
	return ok
}

// FindBrowser returns the installed build directories for browser under
// cacheDir, sorted by name. A missing cacheDir yields no matches.
func FindBrowser(cacheDir, browser string) ([]string, error) {
	prefix, ok := cacheDirPrefixes[browser]
	if !ok {
		return nil, fmt.Errorf("browser %s is not stored in the browsers path", browser)
	}

	pattern, err := glob.Compile(prefix + "-*")
	if err != nil {
		return nil, fmt.Errorf("invalid browser pattern: %w", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var found []string
	for _, entry := range entries {
		if entry.IsDir() && pattern.Match(entry.Name()) {
			found = append(found, filepath.Join(cacheDir, entry.Name()))
		}
	}
	sort.Strings(found)
	return found, nil
}
