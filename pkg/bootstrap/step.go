package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/pwbootstrap/pkg/toolkit"
)

// Step is one idempotent provisioning action.
type Step interface {
	// Name returns the name of the step
	Name() string

	// Execute performs the step. Running it again on an already provisioned
	// host must succeed without changing the end state.
	Execute(ctx context.Context) error
}

// ErrSkipped may be returned (wrapped) by a step whose work was already done.
// The runner records the step as skipped and continues.
var ErrSkipped = errors.New("step skipped")

// StepStatus is the outcome of a single step
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusSkipped StepStatus = "skipped"
	StatusFailed  StepStatus = "failed"
	StatusNotRun  StepStatus = "not_run"
)

// StepError represents a step execution failure
type StepError struct {
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed: %v", e.StepName, e.Err)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status of the failing external command, or 1 when
// the failure did not come from a process.
func (e *StepError) ExitCode() int {
	return toolkit.ExitCode(e.Err)
}

// StepObserver is notified as the runner moves through the steps.
type StepObserver interface {
	StepStarted(index, total int, name string)
	StepFinished(result StepResult)
}

// Runner executes steps strictly in order and stops at the first failure.
type Runner struct {
	steps    []Step
	observer StepObserver
}

// NewRunner creates a new step runner
func NewRunner(steps []Step, observer StepObserver) *Runner {
	return &Runner{steps: steps, observer: observer}
}

// Steps returns the step names in execution order
func (r *Runner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes the steps. Steps after a failure are reported as not run.
func (r *Runner) Run(ctx context.Context) *Results {
	results := &Results{
		Succeeded: true,
		Results:   make([]StepResult, 0, len(r.steps)),
	}

	for i, step := range r.steps {
		if !results.Succeeded {
			results.Results = append(results.Results, StepResult{
				Name:   step.Name(),
				Status: StatusNotRun,
			})
			continue
		}

		if r.observer != nil {
			r.observer.StepStarted(i+1, len(r.steps), step.Name())
		}

		result := StepResult{Name: step.Name()}
		start := time.Now()

		err := ctx.Err()
		if err == nil {
			err = step.Execute(ctx)
		}
		result.Duration = time.Since(start)

		switch {
		case err == nil:
			result.Status = StatusPassed
		case errors.Is(err, ErrSkipped):
			result.Status = StatusSkipped
			result.Detail = strings.TrimSuffix(err.Error(), ": "+ErrSkipped.Error())
		default:
			result.Status = StatusFailed
			result.Error = err.Error()
			results.Succeeded = false
			results.err = &StepError{StepName: step.Name(), Err: err}
		}

		results.Results = append(results.Results, result)
		if r.observer != nil {
			r.observer.StepFinished(result)
		}
	}

	return results
}

// Results contains results from a runner pass
type Results struct {
	Succeeded bool         `json:"succeeded"`
	Results   []StepResult `json:"steps"`

	err *StepError
}

// StepResult represents the result of a single step
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Err returns the *StepError of the failed step, or nil on success.
func (r *Results) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// FailedStep returns the result of the step that stopped the run, or nil.
func (r *Results) FailedStep() *StepResult {
	for i := range r.Results {
		if r.Results[i].Status == StatusFailed {
			return &r.Results[i]
		}
	}
	return nil
}

// ExitCode returns the process exit code for this run
func (r *Results) ExitCode() int {
	if r.err == nil {
		return 0
	}
	return r.err.ExitCode()
}

// skipped wraps a reason so the runner records the step as skipped.
func skipped(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrSkipped)
}
