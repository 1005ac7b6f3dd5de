package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxlrun/internal/action"
	"sxlrun/internal/exec"
	"sxlrun/internal/grammar"
	"sxlrun/internal/plan"
)

func TestResolve_TwoStepContextDataflow(t *testing.T) {
	actions := action.NewRegistry()
	require.NoError(t, action.Describe("fetchCustomer").
		Param("id", "string").
		ProducesContext("customer").
		Register(actions))
	require.NoError(t, action.Describe("greet").
		FromContextParam("customer", "string", "customer").
		ProducesContext("greeting").
		Register(actions))

	funcs := NewFunctionRegistry()
	require.NoError(t, funcs.Register("fetchCustomer", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		return "Ada", nil
	}))
	require.NoError(t, funcs.Register("greet", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		return "Hello, " + args["customer"].(string), nil
	}))

	binder := action.NewBinder(grammar.NewRegistry())
	execCtx := exec.NewExecutionContext()

	p := &plan.Plan{
		Message: "greet the customer",
		Steps: []plan.PlanStep{
			{ActionID: "greet", Parameters: []byte(`{}`)},
			{ActionID: "fetchCustomer", Parameters: []byte(`{"id":"7"}`)},
		},
	}

	resolved, err := Resolve(p, actions, binder, funcs, execCtx)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "step-0", resolved[0].Metadata.StepID)
	assert.Equal(t, []string{"customer"}, resolved[0].Metadata.RequiresContext)

	dag, err := exec.BuildDAG(resolved)
	require.NoError(t, err)

	fetchNode, _ := dag.ByStepID("step-1")
	greetNode, _ := dag.ByStepID("step-0")
	assert.Equal(t, 1, fetchNode.OrderIndex)
	assert.Equal(t, 2, greetNode.OrderIndex)

	executor := exec.NewExecutor()
	_, err = executor.Execute(context.Background(), dag, execCtx)
	require.NoError(t, err)

	greeting, ok := execCtx.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "Hello, Ada", greeting)
}

func TestResolve_CarriesResourceDeclarations(t *testing.T) {
	actions := action.NewRegistry()
	require.NoError(t, action.Describe("exportReport").
		Reads("orders").
		Writes("reports").
		Priority(3).
		Register(actions))

	funcs := NewFunctionRegistry()
	require.NoError(t, funcs.Register("exportReport", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		return nil, nil
	}))

	p := &plan.Plan{Steps: []plan.PlanStep{{ActionID: "exportReport", Parameters: []byte(`{}`)}}}
	resolved, err := Resolve(p, actions, action.NewBinder(grammar.NewRegistry()), funcs, exec.NewExecutionContext())
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	meta := resolved[0].Metadata
	assert.Equal(t, []string{"orders"}, meta.ResourceReads)
	assert.Equal(t, []string{"reports"}, meta.ResourceWrites)
	assert.Equal(t, 3, meta.Priority)
}

func TestResolve_UnknownAction(t *testing.T) {
	actions := action.NewRegistry()
	funcs := NewFunctionRegistry()
	binder := action.NewBinder(grammar.NewRegistry())

	p := &plan.Plan{Steps: []plan.PlanStep{{ActionID: "missing", Parameters: []byte(`{}`)}}}
	_, err := Resolve(p, actions, binder, funcs, exec.NewExecutionContext())
	require.Error(t, err)
	_, ok := err.(*action.UnknownAction)
	assert.True(t, ok)
}

func TestResolve_UnknownHostFunction(t *testing.T) {
	actions := action.NewRegistry()
	require.NoError(t, action.Describe("noop").Register(actions))
	funcs := NewFunctionRegistry()
	binder := action.NewBinder(grammar.NewRegistry())

	p := &plan.Plan{Steps: []plan.PlanStep{{ActionID: "noop", Parameters: []byte(`{}`)}}}
	_, err := Resolve(p, actions, binder, funcs, exec.NewExecutionContext())
	require.Error(t, err)
	_, ok := err.(*UnknownHostFunction)
	assert.True(t, ok)
}

func TestResolve_ArgumentBindingFailure(t *testing.T) {
	actions := action.NewRegistry()
	require.NoError(t, action.Describe("fetchCustomer").Param("id", "string").Register(actions))
	funcs := NewFunctionRegistry()
	require.NoError(t, funcs.Register("fetchCustomer", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		return nil, nil
	}))
	binder := action.NewBinder(grammar.NewRegistry())

	p := &plan.Plan{Steps: []plan.PlanStep{{ActionID: "fetchCustomer", Parameters: []byte(`{}`)}}}
	_, err := Resolve(p, actions, binder, funcs, exec.NewExecutionContext())
	require.Error(t, err)
	_, ok := err.(*ArgumentBindingFailed)
	assert.True(t, ok)
}
