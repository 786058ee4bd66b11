// Package bootstrap provisions a host for headless browser automation.
//
// A bootstrap run is a short ordered list of idempotent steps executed by a
// sequential Runner that stops at the first failure:
//
//	ensure-toolkit   install the runtime (package manager) and Playwright driver
//	prepare-cache    create <cache-root>/ms-playwright, mode 0777
//	install-browser  playwright install <browser> into the cache
//	install-deps     playwright install-deps <browser>
//	verify-browser   locate <browser>-* under the cache
//	export-path      set PLAYWRIGHT_BROWSERS_PATH (and optionally an env file)
//
// There is no retry and no cleanup. A failed run is meant to be discarded by
// whatever invoked it, typically an image build.
//
// Example usage:
//
//	cfg := bootstrap.DefaultConfig()
//	proc, _ := bootstrap.NewProcedure(cfg, bootstrap.Dependencies{
//	    Toolkit: toolkit.NewPlaywright(toolkit.Options{}),
//	})
//	summary, err := proc.Run(ctx)
//
// Every step reads the browsers path from Config.CachePath, so the directory
// that is prepared, the directory the installer writes to and the exported
// value are always the same string.
package bootstrap
