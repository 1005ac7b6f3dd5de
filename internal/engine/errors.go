package engine

import (
	"fmt"
	"strings"

	"sxlrun/internal/action"
)

// UnknownHostFunction is raised when an action descriptor is registered
// but no host function implements it.
type UnknownHostFunction struct {
	ActionID string
}

func (e *UnknownHostFunction) Error() string {
	return fmt.Sprintf("engine: no host function registered for action %q", e.ActionID)
}

// ArgumentBindingFailed wraps every Failure()-tagged ArgumentResult for
// one step, so a caller sees every broken parameter at once rather than
// just the first.
type ArgumentBindingFailed struct {
	StepID   string
	ActionID string
	Failures []action.ArgumentResult
}

func (e *ArgumentBindingFailed) Error() string {
	var parts []string
	for _, f := range e.Failures {
		if !f.Succeeded() {
			parts = append(parts, fmt.Sprintf("%s: %v", f.Param, f.Failure))
		}
	}
	return fmt.Sprintf("engine: step %q (action %q) failed to bind arguments: %s", e.StepID, e.ActionID, strings.Join(parts, "; "))
}

// DuplicateHostFunction is raised by FunctionRegistry.Register when
// actionID is already bound to a function.
type DuplicateHostFunction struct {
	ActionID string
}

func (e *DuplicateHostFunction) Error() string {
	return fmt.Sprintf("engine: host function already registered for action %q", e.ActionID)
}
