package exec

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// TransientClassifier lets a host tell the executor which errors are
// worth retrying (e.g. network errors); the core has no opinion of its
// own.
type TransientClassifier func(error) bool

// AlwaysTransient treats every error as retriable. Useful for tests and
// for hosts with no classifier of their own.
func AlwaysTransient(error) bool { return true }

// NeverTransient treats every error as fatal.
func NeverTransient(error) bool { return false }

// Executor runs an ExecutionDAG's nodes in OrderIndex order against a
// shared ExecutionContext, with retry/timeout/idempotence semantics.
type Executor struct {
	Emitter     InvocationEmitter
	IsTransient TransientClassifier
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// NewExecutor returns an Executor with sane defaults: events discarded,
// nothing treated as transient, 50ms base backoff capped at 2s.
func NewExecutor() *Executor {
	return &Executor{
		Emitter:     NoopEmitter{},
		IsTransient: NeverTransient,
		BaseBackoff: 50 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
	}
}

// Execute walks dag in order, invoking each node's Perform against
// execCtx (created by the caller, or reused across turns). Returns the
// same execCtx on success for convenience chaining, or a
// *PlanExecutionFailed on the first non-retriable error. If ctx is
// already cancelled before a step starts, it returns a bare *Cancelled
// for that step instead.
func (e *Executor) Execute(ctx context.Context, dag *ExecutionDAG, execCtx *ExecutionContext) (*ExecutionContext, error) {
	for _, node := range dag.Nodes {
		if err := ctx.Err(); err != nil {
			return execCtx, &Cancelled{StepID: node.StepID}
		}
		if err := e.runNode(ctx, node, execCtx); err != nil {
			return execCtx, &PlanExecutionFailed{
				StepID:     node.StepID,
				ActionName: node.Action.Metadata.ActionName,
				ArgSummary: node.Action.ArgSummary,
				Cause:      err,
			}
		}
	}
	return execCtx, nil
}

// runNode executes a single step's Pending -> Running -> (Succeeded |
// Failed | Retrying -> Running ...) state machine.
func (e *Executor) runNode(ctx context.Context, node *Node, execCtx *ExecutionContext) error {
	meta := node.Action.Metadata
	attempt := 0

	for {
		invocationID := uuid.NewString()
		e.emit(EventRequested, meta, invocationID, 0)

		result, duration, err := e.invokeWithTimeout(ctx, node, execCtx, invocationID)
		if err != nil {
			e.emit(EventFailed, meta, invocationID, duration)

			if cancelled, ok := err.(*Cancelled); ok {
				return cancelled
			}

			var timeoutErr *ActionTimeout
			isTimeout := asTimeout(err, &timeoutErr)
			transient := !isTimeout && meta.Idempotent && e.IsTransient(err) && attempt < meta.MaxRetries

			if transient {
				attempt++
				e.backoff(attempt)
				continue
			}
			if isTimeout {
				return timeoutErr
			}
			return &ActionInvocationFailed{StepID: meta.StepID, Cause: err}
		}

		e.emit(EventSucceeded, meta, invocationID, duration)

		if node.ContextKeyOf() != "" && result != nil {
			execCtx.Put(node.ContextKeyOf(), result)
		}
		if missing := missingProducedKeys(meta, execCtx); len(missing) > 0 {
			return &ContractViolation{StepID: meta.StepID, MissingKeys: missing}
		}
		return nil
	}
}

func asTimeout(err error, target **ActionTimeout) bool {
	if te, ok := err.(*ActionTimeout); ok {
		*target = te
		return true
	}
	return false
}

func missingProducedKeys(meta ActionMetadata, execCtx *ExecutionContext) []string {
	var missing []string
	for _, k := range meta.ProducesContext {
		if !execCtx.Contains(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

func (e *Executor) invokeWithTimeout(ctx context.Context, node *Node, execCtx *ExecutionContext, invocationID string) (interface{}, int64, error) {
	meta := node.Action.Metadata
	start := time.Now()
	e.emit(EventStarted, meta, invocationID, 0)

	type outcome struct {
		result interface{}
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := node.Action.Perform(execCtx)
		done <- outcome{result, err}
	}()

	// A nil channel never fires, so actions without a timeout only race
	// against cancellation. A stuck invocation is abandoned, not killed:
	// its goroutine drains into the buffered channel.
	var timeoutCh <-chan time.Time
	if meta.Timeout > 0 {
		timer := time.NewTimer(meta.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case o := <-done:
		return o.result, time.Since(start).Milliseconds(), o.err
	case <-timeoutCh:
		return nil, time.Since(start).Milliseconds(), &ActionTimeout{StepID: meta.StepID, Timeout: meta.Timeout.String()}
	case <-ctx.Done():
		return nil, time.Since(start).Milliseconds(), &Cancelled{StepID: meta.StepID}
	}
}

func (e *Executor) emit(t EventType, meta ActionMetadata, invocationID string, durationMS int64) {
	if e.Emitter == nil {
		return
	}
	e.Emitter.Emit(ExecutionEvent{
		Type:         t,
		Kind:         KindActionInvocation,
		Name:         meta.ActionName,
		InvocationID: invocationID,
		DurationMS:   durationMS,
		Attributes:   map[string]string{"stepId": meta.StepID},
	})
}

// backoff sleeps an exponentially growing, jittered delay before a retry;
// jitter keeps concurrent retriers from synchronizing.
func (e *Executor) backoff(attempt int) {
	base := e.BaseBackoff
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	max := e.MaxBackoff
	if max <= 0 {
		max = 2 * time.Second
	}
	delay := base * time.Duration(1<<uint(attempt-1))
	if delay > max {
		delay = max
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	time.Sleep(delay/2 + jitter)
}

// ContextKeyOf exposes the bound action's primary result key to the
// executor without importing the action package.
func (n *Node) ContextKeyOf() string {
	return n.Action.ContextKey
}
