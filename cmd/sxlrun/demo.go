package main

import (
	"fmt"

	"sxlrun/internal/action"
	"sxlrun/internal/engine"
	"sxlrun/internal/exec"
	"sxlrun/internal/grammar"
	"sxlrun/internal/sxl"
)

// demoCustomers backs the demo "fetchCustomer" action with a tiny
// in-memory catalog, standing in for whatever backend a real host
// would query.
var demoCustomers = map[string]string{
	"7":  "Ada",
	"42": "Grace",
}

// newDemoActionRegistry registers the action catalog the CLI's schedule
// and run subcommands demonstrate: a two-step context-dataflow pair,
// plus a DSL-bound action exercising sxl-sql embedding.
func newDemoActionRegistry() *action.Registry {
	r := action.NewRegistry()

	_ = action.Describe("fetchCustomer").
		Description("Looks up a customer by id.").
		Param("id", "string").
		Reads("customers").
		ProducesContext("customer").
		Examples(`{"id": "7"}`).
		Register(r)

	_ = action.Describe("greet").
		Description("Greets the customer currently in context.").
		FromContextParam("customer", "string", "customer").
		ProducesContext("greeting").
		Register(r)

	_ = action.Describe("runQuery").
		Description("Runs a tiny SQL-like query expressed in the sxl-sql DSL.").
		DSLParam("query", "sxl-sql").
		Reads("orders").
		ProducesContext("queryResult").
		Examples(`{"query": "(Q (F orders o) (S (AS o.id id)))"}`).
		Register(r)

	return r
}

// newDemoFunctionRegistry implements the demo actions' behavior.
func newDemoFunctionRegistry() *engine.FunctionRegistry {
	f := engine.NewFunctionRegistry()

	_ = f.Register("fetchCustomer", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		id, _ := args["id"].(string)
		name, ok := demoCustomers[id]
		if !ok {
			return nil, fmt.Errorf("no such customer %q", id)
		}
		return name, nil
	})

	_ = f.Register("greet", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		name, _ := args["customer"].(string)
		return fmt.Sprintf("Hello, %s", name), nil
	})

	_ = f.Register("runQuery", func(ctx *exec.ExecutionContext, args map[string]interface{}) (interface{}, error) {
		dslVal, ok := args["query"].(action.DSLValue)
		if !ok {
			return nil, fmt.Errorf("runQuery: expected a parsed sxl-sql value")
		}
		var rendered []string
		for _, n := range dslVal.Nodes {
			rendered = append(rendered, sxl.String(n))
		}
		return rendered, nil
	})

	return f
}

// newDemoGrammarRegistry loads the bundled testdata grammars (sxl-universal,
// sxl-plan, sxl-sql) used by validate/run/prompt when no --grammar-dir
// is given.
func newDemoGrammarRegistry(dir string) (*grammar.Registry, error) {
	return grammar.LoadDir(dir)
}
