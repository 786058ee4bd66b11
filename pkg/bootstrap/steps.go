package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

// Step names, in the order Procedure runs them
const (
	StepEnsureToolkit  = "ensure-toolkit"
	StepPrepareCache   = "prepare-cache"
	StepInstallBrowser = "install-browser"
	StepInstallDeps    = "install-deps"
	StepVerifyBrowser  = "verify-browser"
	StepExportPath     = "export-path"
)

// EnsureToolkitStep brings the toolkit runtime onto the host. Package-manager
// commands run only when a required binary is missing; the driver install is
// always attempted and is a no-op when already current.
type EnsureToolkitStep struct {
	Toolkit  toolkit.Toolkit
	Commands toolkit.CommandRunner
	Requires []string
	Install  []string
	Log      Logf
}

func (s *EnsureToolkitStep) Name() string { return StepEnsureToolkit }

func (s *EnsureToolkitStep) Execute(ctx context.Context) error {
	if len(s.Install) > 0 {
		missing := toolkit.MissingBinaries(s.Requires)
		if len(s.Requires) > 0 && len(missing) == 0 {
			s.Log.printf("runtime already present (%v), skipping package manager", s.Requires)
		} else {
			for _, cmd := range s.Install {
				s.Log.printf("running: %s", cmd)
				if err := s.Commands.Run(ctx, cmd); err != nil {
					return fmt.Errorf("failed to install toolkit runtime: %w", err)
				}
			}
		}
	}

	if err := s.Toolkit.EnsureDriver(ctx); err != nil {
		return err
	}
	return nil
}

// PrepareCacheStep creates the browsers directory with open permissions.
type PrepareCacheStep struct {
	Path string
	Mode os.FileMode
}

func (s *PrepareCacheStep) Name() string { return StepPrepareCache }

func (s *PrepareCacheStep) Execute(_ context.Context) error {
	return PrepareCache(s.Path, s.Mode)
}

// InstallBrowserStep downloads the browser engine into Path.
type InstallBrowserStep struct {
	Toolkit       toolkit.Toolkit
	Browser       string
	Path          string
	SkipInstalled bool
}

func (s *InstallBrowserStep) Name() string { return StepInstallBrowser }

func (s *InstallBrowserStep) Execute(ctx context.Context) error {
	if s.SkipInstalled && CacheResident(s.Browser) {
		found, err := FindBrowser(s.Path, s.Browser)
		if err != nil {
			return err
		}
		if len(found) > 0 {
			return skipped("%s already installed at %s", s.Browser, found[len(found)-1])
		}
	}

	if err := s.Toolkit.InstallBrowser(ctx, s.Browser, s.Path); err != nil {
		return fmt.Errorf("failed to install %s: %w", s.Browser, err)
	}
	return nil
}

// InstallDepsStep installs the shared libraries the browser needs.
type InstallDepsStep struct {
	Toolkit toolkit.Toolkit
	Browser string
}

func (s *InstallDepsStep) Name() string { return StepInstallDeps }

func (s *InstallDepsStep) Execute(ctx context.Context) error {
	if err := s.Toolkit.InstallDeps(ctx, s.Browser); err != nil {
		return fmt.Errorf("failed to install OS dependencies for %s: %w", s.Browser, err)
	}
	return nil
}

// VerifyBrowserStep checks that the browser build can be found under Path.
// It does not launch the browser.
type VerifyBrowserStep struct {
	Browser string
	Path    string
	Log     Logf
}

func (s *VerifyBrowserStep) Name() string { return StepVerifyBrowser }

func (s *VerifyBrowserStep) Execute(_ context.Context) error {
	if !CacheResident(s.Browser) {
		return skipped("%s is installed system-wide", s.Browser)
	}

	found, err := FindBrowser(s.Path, s.Browser)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no %s build found in %s", s.Browser, s.Path)
	}
	for _, dir := range found {
		s.Log.printf("found %s", dir)
	}
	return nil
}

// ExportPathStep publishes Path as PLAYWRIGHT_BROWSERS_PATH.
type ExportPathStep struct {
	Path    string
	EnvFile string
}

func (s *ExportPathStep) Name() string { return StepExportPath }

func (s *ExportPathStep) Execute(_ context.Context) error {
	if s.EnvFile != "" {
		if err := WriteEnvFile(s.EnvFile, s.Path); err != nil {
			return err
		}
	}
	return ExportBrowsersPath(s.Path)
}

// Logf receives progress detail from steps. A nil Logf discards it.
type Logf func(format string, args ...interface{})

func (l Logf) printf(format string, args ...interface{}) {
	if l != nil {
		l(format, args...)
	}
}
