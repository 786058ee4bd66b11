package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only errors, warnings and the final summary
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows step progress (default)
	LogLevelNormal
	// LogLevelVerbose shows step detail
	LogLevelVerbose
	// LogLevelDebug shows everything, including command output paths
	LogLevelDebug
)

// Color palette
var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	amber      = lipgloss.Color("#F5C26B")
	errorRed   = lipgloss.Color("#F87171")
	mutedGray  = lipgloss.Color("#6B7280")
	cyan       = lipgloss.Color("#7DD3FC")
)

// Logger prints run progress to the console
type Logger struct {
	level  LogLevel
	writer io.Writer

	header  lipgloss.Style
	step    lipgloss.Style
	success lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewLogger creates a console logger writing to stdout
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a console logger writing to w. Colors are dropped when w
// is not a terminal.
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	r := lipgloss.NewRenderer(w)
	return &Logger{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Foreground(salmonPink).Bold(true),
		step:    r.NewStyle().Foreground(cyan),
		success: r.NewStyle().Foreground(mintGreen).Bold(true),
		info:    r.NewStyle().Foreground(salmonPink),
		warning: r.NewStyle().Foreground(amber),
		failure: r.NewStyle().Foreground(errorRed).Bold(true),
		muted:   r.NewStyle().Foreground(mutedGray),
	}
}

// ParseLogLevel converts a verbosity string to a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "normal":
		return LogLevelNormal
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

func (l *Logger) println(style lipgloss.Style, text string) {
	fmt.Fprintln(l.writer, style.Render(text))
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		rule := strings.Repeat("=", 60)
		l.println(l.header, rule)
		l.println(l.header, "  "+message)
		l.println(l.header, rule)
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.println(l.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.println(l.info, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.println(l.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.println(l.failure, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.println(l.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.println(l.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// StepStarted implements StepObserver
func (l *Logger) StepStarted(index, total int, name string) {
	if l.level >= LogLevelNormal {
		l.println(l.step, fmt.Sprintf("[%d/%d] %s", index, total, name))
	}
}

// StepFinished implements StepObserver
func (l *Logger) StepFinished(result StepResult) {
	switch result.Status {
	case StatusPassed:
		if l.level >= LogLevelNormal {
			l.println(l.success, fmt.Sprintf("  ✓ %s (%s)", result.Name, result.Duration.Round(time.Millisecond)))
		}
	case StatusSkipped:
		if l.level >= LogLevelNormal {
			l.println(l.muted, fmt.Sprintf("  - %s skipped: %s", result.Name, result.Detail))
		}
	case StatusFailed:
		l.println(l.failure, fmt.Sprintf("  ✗ %s failed", result.Name))
		if result.Error != "" {
			l.println(l.muted, "    "+result.Error)
		}
	}
}

// Summary prints the final run summary. It is shown at every level.
func (l *Logger) Summary(summary *RunSummary) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(l.writer)
	l.println(l.header, rule)
	l.println(l.header, "  BOOTSTRAP SUMMARY")
	l.println(l.header, rule)

	if summary.Status == statusSuccess {
		fmt.Fprintf(l.writer, "  Status: %s\n", l.success.Render("✓ SUCCESS"))
	} else {
		fmt.Fprintf(l.writer, "  Status: %s\n", l.failure.Render("✗ FAILED"))
	}
	fmt.Fprintf(l.writer, "  Browser: %s\n", summary.Browser)
	fmt.Fprintf(l.writer, "  Browsers path: %s\n", summary.BrowsersPath)
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Millisecond))

	if summary.Steps != nil && l.level >= LogLevelVerbose {
		fmt.Fprintln(l.writer, "\n  Steps:")
		for _, r := range summary.Steps.Results {
			fmt.Fprintf(l.writer, "    %-16s %s\n", r.Name, r.Status)
		}
	}

	if summary.Error != "" {
		fmt.Fprintln(l.writer)
		l.println(l.failure, "  Error Details:")
		fmt.Fprintf(l.writer, "    %s\n", summary.Error)
	}
	if summary.LogPath != "" {
		fmt.Fprintf(l.writer, "  Run log: %s\n", summary.LogPath)
	}
	l.println(l.header, rule)
}
