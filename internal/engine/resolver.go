// Package engine is the plan resolver: it binds a wire-format Plan's
// steps into ExecutableActions by looking up each step's
// ActionDescriptor, converting its JSON parameters via the argument
// binder, and pairing the result with the host function that actually
// performs the operation. Its output feeds directly into exec.BuildDAG
// and exec.Executor.
package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"sxlrun/internal/action"
	"sxlrun/internal/exec"
	"sxlrun/internal/plan"
)

// HostFunction is one host-implemented operation, invoked with its bound
// arguments keyed by parameter name. The descriptor is data, the
// HostFunction is behavior, registered separately so the core never
// needs to reflect on a host type.
type HostFunction func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error)

// FunctionRegistry maps actionId -> HostFunction, populated once at
// process initialization alongside the action.Registry.
type FunctionRegistry struct {
	fns map[string]HostFunction
}

// NewFunctionRegistry returns an empty function registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{fns: map[string]HostFunction{}}
}

// Register binds fn as the implementation of actionID. Fails with
// DuplicateHostFunction if actionID already has one.
func (r *FunctionRegistry) Register(actionID string, fn HostFunction) error {
	if _, exists := r.fns[actionID]; exists {
		return &DuplicateHostFunction{ActionID: actionID}
	}
	r.fns[actionID] = fn
	return nil
}

// Lookup returns the host function for actionID, or ok=false.
func (r *FunctionRegistry) Lookup(actionID string) (HostFunction, bool) {
	fn, ok := r.fns[actionID]
	return fn, ok
}

// Resolve binds every step of p into an ExecutableAction. Steps are
// resolved independently and in order; a step whose action is unknown,
// whose arguments fail to bind, or whose host function is unregistered
// aborts resolution immediately. The one exception is a fromContext
// parameter whose key is not yet in execCtx: it does not abort
// resolution, because each action's arguments are bound again against
// the live context when the executor invokes it, after the steps the DAG
// orders before it have run.
func Resolve(p *plan.Plan, actions *action.Registry, binder *action.Binder, funcs *FunctionRegistry, execCtx *exec.ExecutionContext) ([]*exec.ExecutableAction, error) {
	out := make([]*exec.ExecutableAction, 0, len(p.Steps))
	for i, step := range p.Steps {
		ea, err := resolveStep(i, step, actions, binder, funcs, execCtx)
		if err != nil {
			return nil, err
		}
		out = append(out, ea)
	}
	return out, nil
}

func resolveStep(index int, step plan.PlanStep, actions *action.Registry, binder *action.Binder, funcs *FunctionRegistry, execCtx *exec.ExecutionContext) (*exec.ExecutableAction, error) {
	stepID := step.StepID
	if stepID == "" {
		stepID = fmt.Sprintf("step-%d", index)
	}

	descriptor, err := actions.Lookup(step.ActionID)
	if err != nil {
		return nil, err
	}

	fn, ok := funcs.Lookup(step.ActionID)
	if !ok {
		return nil, &UnknownHostFunction{ActionID: step.ActionID}
	}

	results, err := binder.Bind(descriptor, step.Parameters, execCtx)
	if err != nil {
		return nil, err
	}

	var failures []action.ArgumentResult
	for _, r := range results {
		// A context key may still be written by a step scheduled earlier.
		if _, deferred := r.Failure.(*action.MissingContext); !r.Succeeded() && !deferred {
			failures = append(failures, r)
		}
	}
	if len(failures) > 0 {
		return nil, &ArgumentBindingFailed{StepID: stepID, ActionID: step.ActionID, Failures: failures}
	}

	meta := buildMetadata(stepID, step, descriptor)

	return &exec.ExecutableAction{
		Metadata:   meta,
		ContextKey: descriptor.ContextKey,
		ArgSummary: summarizeArgs(results),
		Perform: func(ctx *exec.ExecutionContext) (interface{}, error) {
			bound, err := binder.Bind(descriptor, step.Parameters, ctx)
			if err != nil {
				return nil, err
			}
			args := make(map[string]interface{}, len(bound))
			for _, r := range bound {
				if !r.Succeeded() {
					return nil, &ArgumentBindingFailed{StepID: stepID, ActionID: step.ActionID, Failures: []action.ArgumentResult{r}}
				}
				args[r.Param] = r.Value
			}
			return fn(ctx, args)
		},
	}, nil
}

// summarizeArgs renders the bound arguments compactly for diagnostics,
// truncating long values so a failed plan's error stays readable.
func summarizeArgs(results []action.ArgumentResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		v := fmt.Sprintf("%v", r.Value)
		if len(v) > 48 {
			v = v[:45] + "..."
		}
		parts = append(parts, r.Param+"="+v)
	}
	return strings.Join(parts, ", ")
}

func buildMetadata(stepID string, step plan.PlanStep, d *action.ActionDescriptor) exec.ActionMetadata {
	var requiresContext []string
	for _, p := range d.Parameters {
		if p.FromContext != "" {
			requiresContext = append(requiresContext, p.FromContext)
		}
	}

	var producesContext []string
	if d.ContextKey != "" {
		producesContext = append(producesContext, d.ContextKey)
	}
	producesContext = append(producesContext, d.AdditionalContextKeys...)

	return exec.ActionMetadata{
		StepID:          stepID,
		ActionName:      d.ID,
		AffinityIDs:     resolveAffinities(d, step),
		Mutability:      string(d.Mutability),
		ResourceReads:   d.ResourceReads,
		ResourceWrites:  d.ResourceWrites,
		RequiresContext: requiresContext,
		ProducesContext: producesContext,
		DependsOn:       step.DependsOn,
		Cost:            d.Cost,
		Priority:        d.Priority,
		Timeout:         d.Timeout,
		MaxRetries:      d.MaxRetries,
		Idempotent:      d.Idempotent,
	}
}

// resolveAffinities expands "{placeholder}" templates in the descriptor's
// affinity strings against the step's own JSON parameters.
func resolveAffinities(d *action.ActionDescriptor, step plan.PlanStep) []string {
	if len(d.Affinities) == 0 {
		return nil
	}
	var params map[string]interface{}
	if len(step.Parameters) > 0 {
		// Template resolution is best-effort: malformed parameter JSON is
		// already reported by the binder, so here we just resolve what we
		// can and leave unresolved placeholders blank.
		_ = json.Unmarshal(step.Parameters, &params)
	}
	flat := action.FlattenParams(params)
	return action.ResolveAffinities(d.Affinities, flat)
}
