// Package main provides pwbootstrap, which provisions a host or container
// image for headless browser automation: Playwright driver, a browser engine,
// its OS libraries, and a world-writable browsers cache exported through
// PLAYWRIGHT_BROWSERS_PATH.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/entrhq/pwbootstrap/pkg/bootstrap"
	"github.com/entrhq/pwbootstrap/pkg/logging"
	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

const version = "0.1.0"

// Options holds the command line flags
type Options struct {
	ConfigPath  string
	Browser     string
	CacheRoot   string
	EnvFile     string
	ReportDir   string
	Verbosity   string
	SkipDeps    bool
	ShowVersion bool

	// Command runs after a successful bootstrap with the exported environment
	Command []string
}

func main() {
	opts := parseFlags(os.Args[1:])

	if opts.ShowVersion {
		fmt.Printf("pwbootstrap v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
		cancel()
	}()

	code := run(ctx, opts, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// parseFlags parses command line flags. Arguments after the flags form the
// command to run once provisioning succeeds.
func parseFlags(args []string) *Options {
	opts := &Options{}
	fs := flag.NewFlagSet("pwbootstrap", flag.ExitOnError)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.Browser, "browser", "", "Browser engine to install (default: chromium)")
	fs.StringVar(&opts.CacheRoot, "cache-root", "", "Parent of the ms-playwright directory (default: ~/.cache)")
	fs.StringVar(&opts.EnvFile, "env-file", "", "Write an export line for PLAYWRIGHT_BROWSERS_PATH to this file")
	fs.StringVar(&opts.ReportDir, "report-dir", "", "Write report.json and summary.md to this directory")
	fs.StringVar(&opts.Verbosity, "verbosity", "", "Console verbosity: quiet, normal, verbose, debug")
	fs.BoolVar(&opts.SkipDeps, "skip-deps", false, "Do not install OS dependencies for the browser")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "pwbootstrap - provision Playwright and a headless browser\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pwbootstrap [options] [-- command [args...]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PWBOOTSTRAP_BROWSER      Browser engine\n")
		fmt.Fprintf(os.Stderr, "  PWBOOTSTRAP_CACHE_ROOT   Parent of the ms-playwright directory\n")
		fmt.Fprintf(os.Stderr, "  PWBOOTSTRAP_DRIVER_DIR   Playwright driver directory\n")
		fmt.Fprintf(os.Stderr, "  PWBOOTSTRAP_ENV_FILE     Env file to write\n")
		fmt.Fprintf(os.Stderr, "  PWBOOTSTRAP_VERBOSITY    Console verbosity\n")
		fmt.Fprintf(os.Stderr, "  PWBOOTSTRAP_LOG_DIR      Run log directory (default: ~/.pwbootstrap/logs)\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pwbootstrap\n")
		fmt.Fprintf(os.Stderr, "  pwbootstrap -cache-root /home/appuser/.cache -env-file /etc/profile.d/playwright.sh\n")
		fmt.Fprintf(os.Stderr, "  pwbootstrap -config bootstrap.yaml -- python app.py\n")
	}

	_ = fs.Parse(args)
	opts.Command = fs.Args()
	return opts
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig(opts *Options) (*bootstrap.Config, error) {
	cfg := bootstrap.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := bootstrap.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if opts.Browser != "" {
		cfg.Browser = opts.Browser
	}
	if opts.CacheRoot != "" {
		cfg.Cache.Root = opts.CacheRoot
	}
	if opts.EnvFile != "" {
		cfg.Export.EnvFile = opts.EnvFile
	}
	if opts.ReportDir != "" {
		cfg.Report.Enabled = true
		cfg.Report.OutputDir = opts.ReportDir
	}
	if opts.Verbosity != "" {
		cfg.Logging.Verbosity = opts.Verbosity
	}
	if opts.SkipDeps {
		cfg.Install.WithDeps = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// run provisions the host and returns the process exit code.
func run(ctx context.Context, opts *Options, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	console := bootstrap.NewLoggerTo(stdout, bootstrap.ParseLogLevel(cfg.Logging.Verbosity))

	runLog, err := logging.NewLogger(cfg.Logging.Dir, "bootstrap")
	if err != nil {
		console.Warningf("run log unavailable: %v", err)
	}
	defer runLog.Close()

	// Command output goes to the run log; debug verbosity also echoes it
	output := runLog.Writer()
	if cfg.Logging.Verbosity == "debug" {
		output = io.MultiWriter(output, stdout)
	}

	tk := toolkit.NewPlaywright(toolkit.Options{
		DriverDirectory: cfg.Runtime.DriverDir,
		Verbose:         cfg.Logging.Verbosity == "debug",
		Stdout:          output,
		Stderr:          output,
	})

	proc, err := bootstrap.NewProcedure(cfg, bootstrap.Dependencies{
		Toolkit:  tk,
		Commands: toolkit.NewShellRunner(output, output),
		Console:  console,
		RunLog:   runLog,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	summary, err := proc.Run(ctx)
	if err != nil {
		return summary.ExitCode
	}

	if len(opts.Command) == 0 {
		return 0
	}
	return execCommand(ctx, opts.Command, stdout, stderr)
}

// execCommand runs the trailing command. It inherits the process environment,
// which now carries PLAYWRIGHT_BROWSERS_PATH.
func execCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return toolkit.ExitCode(err)
		}
		fmt.Fprintf(stderr, "Error: failed to run %s: %v\n", args[0], err)
		return 127
	}
	return 0
}
