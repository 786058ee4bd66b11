package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunSummary describes a complete bootstrap run
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Status       string        `json:"status"`
	Error        string        `json:"error,omitempty"`
	FailedStep   string        `json:"failed_step,omitempty"`
	ExitCode     int           `json:"exit_code"`
	Browser      string        `json:"browser"`
	BrowsersPath string        `json:"browsers_path"`
	EnvFile      string        `json:"env_file,omitempty"`
	LogPath      string        `json:"log_path,omitempty"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	Steps        *Results      `json:"steps,omitempty"`
}

// ReportWriter writes run reports to a directory
type ReportWriter struct {
	outputDir string
}

// NewReportWriter creates a new report writer
func NewReportWriter(outputDir string) *ReportWriter {
	return &ReportWriter{outputDir: outputDir}
}

// WriteAll writes report.json and summary.md
func (w *ReportWriter) WriteAll(summary *RunSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteJSON(summary); err != nil {
		return err
	}
	return w.WriteMarkdown(summary)
}

// WriteJSON writes the full summary as JSON
func (w *ReportWriter) WriteJSON(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "report.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0644); writeErr != nil {
		return fmt.Errorf("failed to write report JSON: %w", writeErr)
	}
	return nil
}

// WriteMarkdown writes a human-readable summary
func (w *ReportWriter) WriteMarkdown(summary *RunSummary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder
	md.WriteString("# Browser Bootstrap Summary\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	md.WriteString(fmt.Sprintf("**Browser:** %s\n\n", summary.Browser))
	md.WriteString(fmt.Sprintf("**Browsers path:** `%s`\n\n", summary.BrowsersPath))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration))

	md.WriteString("## Result\n\n")
	if summary.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", summary.Error))
		md.WriteString(fmt.Sprintf("Exit code: %d\n\n", summary.ExitCode))
	} else {
		md.WriteString("✅ **Success**\n\n")
	}

	if summary.Steps != nil && len(summary.Steps.Results) > 0 {
		md.WriteString("## Steps\n\n")
		md.WriteString("| Step | Status | Duration |\n|---|---|---|\n")
		for _, r := range summary.Steps.Results {
			md.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r.Name, r.Status, r.Duration.Round(time.Millisecond)))
		}
		md.WriteString("\n")
	}

	if writeErr := os.WriteFile(path, []byte(md.String()), 0644); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}
	return nil
}
