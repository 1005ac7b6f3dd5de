// Package llmclient produces plans from a language model. The engine
// packages never import this package or any concrete LLM SDK; they only
// depend on the PlanGenerator contract. A host wires a concrete adapter
// (GenaiPlanGenerator) at the edge.
package llmclient

import (
	"context"
	"fmt"

	"sxlrun/internal/plan"
)

// PlanGenerator produces a wire-format Plan from a system prompt and a
// user utterance. This is the sole contract the core depends on for
// plan generation.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, systemPrompt, userUtterance string) (*plan.Plan, error)
}

// GenerationError wraps a failure to produce or parse a plan from a raw
// model response, keeping the response text for diagnostics.
type GenerationError struct {
	RawResponse string
	Cause       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llmclient: failed to generate plan: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }
