package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/pwbootstrap/pkg/logging"
	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// Dependencies are the collaborators a Procedure drives.
type Dependencies struct {
	Toolkit  toolkit.Toolkit
	Commands toolkit.CommandRunner
	Console  *Logger
	// RunLog is optional; when set, step progress is mirrored into the run log file
	RunLog *logging.Logger
}

// Procedure is the full bootstrap: an ordered list of steps, a runner, and
// reporting around it.
type Procedure struct {
	config  *Config
	runner  *Runner
	console *Logger
	runLog  *logging.Logger
	reports *ReportWriter
}

// NewProcedure validates cfg and assembles the steps.
func NewProcedure(cfg *Config, deps Dependencies) (*Procedure, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if deps.Toolkit == nil {
		return nil, fmt.Errorf("toolkit is required")
	}
	if deps.Commands == nil {
		deps.Commands = toolkit.NewShellRunner(nil, nil)
	}
	if deps.Console == nil {
		deps.Console = NewLogger(ParseLogLevel(cfg.Logging.Verbosity))
	}

	p := &Procedure{
		config:  cfg,
		console: deps.Console,
		runLog:  deps.RunLog,
	}
	if cfg.Report.Enabled {
		p.reports = NewReportWriter(cfg.Report.OutputDir)
	}

	steps, err := BuildSteps(cfg, deps.Toolkit, deps.Commands, p.detail)
	if err != nil {
		return nil, err
	}
	p.runner = NewRunner(steps, p)
	return p, nil
}

// BuildSteps returns the provisioning steps for cfg in execution order:
//
//	ensure-toolkit → prepare-cache → install-browser → install-deps →
//	verify-browser → export-path
//
// The cache directory is prepared before the installer runs, and the installer
// is pointed at it through its own environment, so the first run already
// places the binaries where the exported variable says they are. The variable
// is exported only after the browser is verified.
func BuildSteps(cfg *Config, tk toolkit.Toolkit, cmds toolkit.CommandRunner, logf Logf) ([]Step, error) {
	mode, err := cfg.CacheMode()
	if err != nil {
		return nil, err
	}
	path := cfg.CachePath()

	steps := []Step{
		&EnsureToolkitStep{
			Toolkit:  tk,
			Commands: cmds,
			Requires: cfg.Runtime.Requires,
			Install:  cfg.Runtime.Install,
			Log:      logf,
		},
		&PrepareCacheStep{Path: path, Mode: mode},
		&InstallBrowserStep{
			Toolkit:       tk,
			Browser:       cfg.Browser,
			Path:          path,
			SkipInstalled: cfg.Install.SkipInstalled,
		},
	}
	if cfg.Install.WithDeps {
		steps = append(steps, &InstallDepsStep{Toolkit: tk, Browser: cfg.Browser})
	}
	steps = append(steps,
		&VerifyBrowserStep{Browser: cfg.Browser, Path: path, Log: logf},
		&ExportPathStep{Path: path, EnvFile: cfg.Export.EnvFile},
	)
	return steps, nil
}

// Steps returns the step names in execution order
func (p *Procedure) Steps() []string {
	return p.runner.Steps()
}

// Run executes the procedure. The returned error is a *StepError naming the
// first failed step; the summary is always non-nil.
func (p *Procedure) Run(ctx context.Context) (*RunSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	summary := &RunSummary{
		RunID:        logging.GetRunID(),
		Browser:      p.config.Browser,
		BrowsersPath: p.config.CachePath(),
		EnvFile:      p.config.Export.EnvFile,
		StartTime:    time.Now(),
	}
	if p.runLog != nil {
		summary.LogPath = p.runLog.LogPath()
	}

	p.console.Header(fmt.Sprintf("Provisioning %s into %s", summary.Browser, summary.BrowsersPath))
	p.logInfo("starting run %s: browser=%s path=%s", summary.RunID, summary.Browser, summary.BrowsersPath)

	results := p.runner.Run(ctx)

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	summary.Steps = results
	summary.ExitCode = results.ExitCode()

	err := results.Err()
	if err != nil {
		summary.Status = statusFailed
		summary.Error = err.Error()
		if failed := results.FailedStep(); failed != nil {
			summary.FailedStep = failed.Name
		}
		p.logError("run failed: %v", err)
	} else {
		summary.Status = statusSuccess
		p.logInfo("run succeeded in %s", summary.Duration)
	}

	if p.reports != nil {
		if reportErr := p.reports.WriteAll(summary); reportErr != nil {
			p.console.Warningf("failed to write report: %v", reportErr)
		}
	}

	p.console.Summary(summary)
	return summary, err
}

// StepStarted implements StepObserver
func (p *Procedure) StepStarted(index, total int, name string) {
	p.console.StepStarted(index, total, name)
	p.logInfo("step %d/%d %s started", index, total, name)
}

// StepFinished implements StepObserver
func (p *Procedure) StepFinished(result StepResult) {
	p.console.StepFinished(result)
	if result.Status == StatusFailed {
		p.logError("step %s failed after %s: %s", result.Name, result.Duration, result.Error)
		return
	}
	p.logInfo("step %s %s in %s", result.Name, result.Status, result.Duration)
}

func (p *Procedure) detail(format string, args ...interface{}) {
	p.console.Verbosef(format, args...)
	if p.runLog != nil {
		p.runLog.Debugf(format, args...)
	}
}

func (p *Procedure) logInfo(format string, args ...interface{}) {
	if p.runLog != nil {
		p.runLog.Infof(format, args...)
	}
}

func (p *Procedure) logError(format string, args ...interface{}) {
	if p.runLog != nil {
		p.runLog.Errorf(format, args...)
	}
}
