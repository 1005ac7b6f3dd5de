package exec

import "time"

// ActionMetadata is the scheduling-relevant description of one bound,
// executable step. It is immutable once built and is designed to be
// serializable (e.g. for diagnostics or a future durable queue, though
// persistence itself is out of scope).
type ActionMetadata struct {
	StepID          string
	ActionName      string
	AffinityIDs     []string
	Mutability      string // "READ_ONLY" | "MUTATE", kept as a string to avoid an exec->action import
	ResourceReads   []string
	ResourceWrites  []string
	RequiresContext []string
	ProducesContext []string
	DependsOn       []string
	Cost            int
	Priority        int
	Timeout         time.Duration
	MaxRetries      int
	Idempotent      bool
}

// ExecutableAction pairs metadata with the host invocation it schedules.
// Perform runs the bound action against the shared context and returns
// its primary result (stored under ContextKey by the executor
// if non-nil), or an error.
type ExecutableAction struct {
	Metadata ActionMetadata
	Perform  func(ctx *ExecutionContext) (interface{}, error)
	// ContextKey is the primary result key; mirrors
	// action.ActionDescriptor.ContextKey without requiring an import.
	ContextKey string
	// ArgSummary is a human-readable rendering of the bound arguments,
	// carried into PlanExecutionFailed so a failure names enough to
	// reproduce.
	ArgSummary string
}
