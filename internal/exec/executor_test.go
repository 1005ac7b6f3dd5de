package exec

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	events []ExecutionEvent
}

func (r *recordingEmitter) Emit(e ExecutionEvent) {
	r.events = append(r.events, e)
}

func (r *recordingEmitter) countByType(t EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func TestExecute_TwoStepContextDataflow(t *testing.T) {
	fetch := &ExecutableAction{
		Metadata:   ActionMetadata{StepID: "fetchCustomer", ActionName: "fetchCustomer", ProducesContext: []string{"customer"}},
		ContextKey: "customer",
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			return "Ada", nil
		},
	}
	greet := &ExecutableAction{
		Metadata:   ActionMetadata{StepID: "greet", ActionName: "greet", RequiresContext: []string{"customer"}, ProducesContext: []string{"greeting"}},
		ContextKey: "greeting",
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			name, _, _ := GetTyped[string](ctx, "customer")
			return fmt.Sprintf("Hello, %s", name), nil
		},
	}

	dag, err := BuildDAG([]*ExecutableAction{greet, fetch})
	require.NoError(t, err)

	execCtx := NewExecutionContext()
	ex := NewExecutor()
	_, err = ex.Execute(context.Background(), dag, execCtx)
	require.NoError(t, err)

	customer, _ := execCtx.Get("customer")
	greeting, _ := execCtx.Get("greeting")
	assert.Equal(t, "Ada", customer)
	assert.Equal(t, "Hello, Ada", greeting)
}

func TestExecute_RetryOnTransientFailure(t *testing.T) {
	calls := 0
	flaky := &ExecutableAction{
		Metadata: ActionMetadata{
			StepID:          "flaky",
			ActionName:      "flaky",
			Idempotent:      true,
			MaxRetries:      2,
			Timeout:         100 * time.Millisecond,
			ProducesContext: []string{"result"},
		},
		ContextKey: "result",
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient network error")
			}
			return "ok", nil
		},
	}

	dag, err := BuildDAG([]*ExecutableAction{flaky})
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	ex := NewExecutor()
	ex.Emitter = emitter
	ex.IsTransient = AlwaysTransient
	ex.BaseBackoff = time.Millisecond
	ex.MaxBackoff = 5 * time.Millisecond

	execCtx := NewExecutionContext()
	_, err = ex.Execute(context.Background(), dag, execCtx)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, emitter.countByType(EventRequested))
	assert.Equal(t, 1, emitter.countByType(EventSucceeded))

	result, _ := execCtx.Get("result")
	assert.Equal(t, "ok", result)
}

func TestExecute_NonIdempotentNeverRetries(t *testing.T) {
	calls := 0
	action := &ExecutableAction{
		Metadata: ActionMetadata{StepID: "once", ActionName: "once", Idempotent: false, MaxRetries: 3},
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			calls++
			return nil, errors.New("boom")
		},
	}
	dag, err := BuildDAG([]*ExecutableAction{action})
	require.NoError(t, err)

	ex := NewExecutor()
	ex.IsTransient = AlwaysTransient
	_, err = ex.Execute(context.Background(), dag, NewExecutionContext())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecute_TimeoutSurfacesAsActionTimeout(t *testing.T) {
	slow := &ExecutableAction{
		Metadata: ActionMetadata{StepID: "slow", ActionName: "slow", Timeout: 10 * time.Millisecond},
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			time.Sleep(200 * time.Millisecond)
			return nil, nil
		},
	}
	dag, err := BuildDAG([]*ExecutableAction{slow})
	require.NoError(t, err)

	ex := NewExecutor()
	_, err = ex.Execute(context.Background(), dag, NewExecutionContext())
	require.Error(t, err)
	var te *ActionTimeout
	assert.ErrorAs(t, err, &te)
}

func TestExecute_CancellationIsNeverRetried(t *testing.T) {
	calls := 0
	blocked := &ExecutableAction{
		Metadata: ActionMetadata{StepID: "blocked", ActionName: "blocked", Idempotent: true, MaxRetries: 5},
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			calls++
			time.Sleep(200 * time.Millisecond)
			return nil, nil
		},
	}
	dag, err := BuildDAG([]*ExecutableAction{blocked})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	ex := NewExecutor()
	ex.IsTransient = AlwaysTransient
	_, err = ex.Execute(ctx, dag, NewExecutionContext())
	require.Error(t, err)
	var c *Cancelled
	assert.ErrorAs(t, err, &c)
	assert.Equal(t, 1, calls)
}

func TestExecute_ContractViolation(t *testing.T) {
	action := &ExecutableAction{
		Metadata: ActionMetadata{StepID: "incomplete", ActionName: "incomplete", ProducesContext: []string{"expected"}},
		Perform: func(ctx *ExecutionContext) (interface{}, error) {
			return nil, nil
		},
	}
	dag, err := BuildDAG([]*ExecutableAction{action})
	require.NoError(t, err)

	ex := NewExecutor()
	_, err = ex.Execute(context.Background(), dag, NewExecutionContext())
	require.Error(t, err)
	var pf *PlanExecutionFailed
	require.ErrorAs(t, err, &pf)
	_, ok := pf.Cause.(*ContractViolation)
	assert.True(t, ok)
}
