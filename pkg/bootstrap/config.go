package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBrowser is the engine installed when none is configured
	DefaultBrowser = "chromium"
	// CacheDirName is the directory Playwright keeps browser builds in
	CacheDirName = "ms-playwright"
	// DefaultCacheMode opens the cache to every user on the host
	DefaultCacheMode = "0777"
)

// supportedBrowsers lists the engines accepted by `playwright install`.
var supportedBrowsers = map[string]bool{
	"chromium":                true,
	"chromium-headless-shell": true,
	"chrome":                  true,
	"chrome-beta":             true,
	"msedge":                  true,
	"firefox":                 true,
	"webkit":                  true,
}

// Config represents the configuration for a bootstrap run
type Config struct {
	// Browser engine to install
	Browser string `yaml:"browser" json:"browser"`

	// Timeout bounds the whole run
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	Cache   CacheConfig   `yaml:"cache" json:"cache"`
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`
	Install InstallConfig `yaml:"install" json:"install"`
	Export  ExportConfig  `yaml:"export" json:"export"`
	Report  ReportConfig  `yaml:"report" json:"report"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CacheConfig defines where browser binaries live
type CacheConfig struct {
	// Root is the parent directory, normally the user's ~/.cache
	Root string `yaml:"root" json:"root"`
	// Mode is an octal permission string applied to the cache directory
	Mode string `yaml:"mode" json:"mode"`
}

// RuntimeConfig defines how the toolkit runtime is brought onto the host
type RuntimeConfig struct {
	// Requires lists binaries that must be on PATH; if any is missing the
	// Install commands are run
	Requires []string `yaml:"requires" json:"requires"`
	// Install holds package-manager commands, run in order through sh -c
	Install []string `yaml:"install" json:"install"`
	// DriverDir overrides where the Playwright driver is unpacked
	DriverDir string `yaml:"driver_dir" json:"driver_dir"`
}

// InstallConfig defines browser installation behaviour
type InstallConfig struct {
	WithDeps      bool `yaml:"with_deps" json:"with_deps"`
	SkipInstalled bool `yaml:"skip_installed" json:"skip_installed"`
}

// ExportConfig defines how the browsers path is published
type ExportConfig struct {
	// EnvFile, when set, receives an `export PLAYWRIGHT_BROWSERS_PATH=...` line
	// for shells started after this process exits
	EnvFile string `yaml:"env_file" json:"env_file"`
}

// ReportConfig defines run report generation
type ReportConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	// Dir is where the run log file is written
	Dir string `yaml:"dir" json:"dir"`
}

// EnvOverrides holds settings read from the process environment.
type EnvOverrides struct {
	Browser   string `env:"PWBOOTSTRAP_BROWSER"`
	CacheRoot string `env:"PWBOOTSTRAP_CACHE_ROOT"`
	DriverDir string `env:"PWBOOTSTRAP_DRIVER_DIR"`
	EnvFile   string `env:"PWBOOTSTRAP_ENV_FILE"`
	Verbosity string `env:"PWBOOTSTRAP_VERBOSITY"`
	LogDir    string `env:"PWBOOTSTRAP_LOG_DIR"`
}

// DefaultConfig returns a configuration that reproduces the plain bootstrap
// script: chromium with OS dependencies into ~/.cache/ms-playwright.
func DefaultConfig() *Config {
	root := ""
	if home, err := os.UserHomeDir(); err == nil {
		root = filepath.Join(home, ".cache")
	}

	return &Config{
		Browser: DefaultBrowser,
		Timeout: 15 * time.Minute,
		Cache: CacheConfig{
			Root: root,
			Mode: DefaultCacheMode,
		},
		Install: InstallConfig{
			WithDeps: true,
		},
		Report: ReportConfig{
			OutputDir: ".pwbootstrap/report",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays non-empty PWBOOTSTRAP_* variables onto the config.
func (c *Config) ApplyEnv() error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Browser != "" {
		c.Browser = o.Browser
	}
	if o.CacheRoot != "" {
		c.Cache.Root = o.CacheRoot
	}
	if o.DriverDir != "" {
		c.Runtime.DriverDir = o.DriverDir
	}
	if o.EnvFile != "" {
		c.Export.EnvFile = o.EnvFile
	}
	if o.Verbosity != "" {
		c.Logging.Verbosity = o.Verbosity
	}
	if o.LogDir != "" {
		c.Logging.Dir = o.LogDir
	}
	return nil
}

// CachePath returns <cache-root>/ms-playwright. Every step that touches the
// browsers path gets it from here.
func (c *Config) CachePath() string {
	return filepath.Join(c.Cache.Root, CacheDirName)
}

// CacheMode parses the configured octal permission string.
func (c *Config) CacheMode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.Cache.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid cache mode %q: %w", c.Cache.Mode, err)
	}
	if mode > 0777 {
		return 0, fmt.Errorf("invalid cache mode %q: only permission bits are allowed", c.Cache.Mode)
	}
	return os.FileMode(mode), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Browser == "" {
		return fmt.Errorf("browser is required")
	}
	if !supportedBrowsers[c.Browser] {
		return fmt.Errorf("unsupported browser: %s", c.Browser)
	}

	if c.Cache.Root == "" {
		return fmt.Errorf("cache root is required")
	}
	if !filepath.IsAbs(c.Cache.Root) {
		return fmt.Errorf("cache root must be an absolute path: %s", c.Cache.Root)
	}

	if c.Cache.Mode == "" {
		c.Cache.Mode = DefaultCacheMode
	}
	if _, err := c.CacheMode(); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	for i, cmd := range c.Runtime.Install {
		if cmd == "" {
			return fmt.Errorf("runtime install command %d is empty", i)
		}
	}

	if c.Report.Enabled && c.Report.OutputDir == "" {
		return fmt.Errorf("report output directory is required when reports are enabled")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}
