package exec

import "fmt"

// ActionTimeout is raised when a single action invocation exceeds its
// declared timeout.
type ActionTimeout struct {
	StepID  string
	Timeout string
}

func (e *ActionTimeout) Error() string {
	return fmt.Sprintf("exec: step %q timed out after %s", e.StepID, e.Timeout)
}

// Cancelled is raised when the executor's cancellation signal fires;
// distinct from ActionTimeout and never retried.
type Cancelled struct{ StepID string }

func (e *Cancelled) Error() string {
	return fmt.Sprintf("exec: step %q cancelled", e.StepID)
}

// ContractViolation is raised when an action completes without writing
// every key it declared in producesContext.
type ContractViolation struct {
	StepID      string
	MissingKeys []string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("exec: step %q did not produce context keys %v", e.StepID, e.MissingKeys)
}

// ActionInvocationFailed wraps the error returned by an action's Perform.
type ActionInvocationFailed struct {
	StepID string
	Cause  error
}

func (e *ActionInvocationFailed) Error() string {
	return fmt.Sprintf("exec: step %q failed: %v", e.StepID, e.Cause)
}

func (e *ActionInvocationFailed) Unwrap() error { return e.Cause }

// PlanExecutionFailed wraps the terminal, non-retriable cause that
// aborted a plan, with enough fields (action name, step id, bound args
// summary) to reproduce the failure.
type PlanExecutionFailed struct {
	StepID     string
	ActionName string
	ArgSummary string
	Cause      error
}

func (e *PlanExecutionFailed) Error() string {
	return fmt.Sprintf("exec: plan execution failed at step %q (action %q, args %s): %v", e.StepID, e.ActionName, e.ArgSummary, e.Cause)
}

func (e *PlanExecutionFailed) Unwrap() error { return e.Cause }
