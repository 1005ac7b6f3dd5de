package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxlrun/internal/exec"
	"sxlrun/internal/grammar"
)

func TestRegistry_DuplicateActionId(t *testing.T) {
	r := NewRegistry()
	d := Describe("greet").Param("name", "string").Build()
	require.NoError(t, r.Register(d))

	err := r.Register(d)
	require.Error(t, err)
	_, ok := err.(*DuplicateActionId)
	assert.True(t, ok)
}

func TestRegistry_UnknownAction(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("nope")
	require.Error(t, err)
	_, ok := err.(*UnknownAction)
	assert.True(t, ok)
}

func TestBind_MissingArgument(t *testing.T) {
	d := Describe("greet").Param("name", "string").Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()

	results, err := b.Bind(d, json.RawMessage(`{}`), ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Succeeded())
	_, ok := results[0].Failure.(*MissingArgument)
	assert.True(t, ok)
}

func TestBind_MissingContext(t *testing.T) {
	d := Describe("greet").FromContextParam("customer", "any", "customer").Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()

	results, err := b.Bind(d, json.RawMessage(`{}`), ctx)
	require.NoError(t, err)
	assert.False(t, results[0].Succeeded())
	_, ok := results[0].Failure.(*MissingContext)
	assert.True(t, ok)
}

func TestBind_FromContextWrongTypeFails(t *testing.T) {
	d := Describe("greet").FromContextParam("customer", "string", "customer").Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()
	ctx.Put("customer", 42)

	results, err := b.Bind(d, json.RawMessage(`{}`), ctx)
	require.NoError(t, err)
	require.False(t, results[0].Succeeded())
	_, ok := results[0].Failure.(*MissingContext)
	assert.True(t, ok)
}

func TestBind_FromContextMatchingTypeSucceeds(t *testing.T) {
	d := Describe("greet").FromContextParam("customer", "string", "customer").Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()
	ctx.Put("customer", "Ada")

	results, err := b.Bind(d, json.RawMessage(`{}`), ctx)
	require.NoError(t, err)
	require.True(t, results[0].Succeeded())
	assert.Equal(t, "Ada", results[0].Value)
}

func TestBind_Success(t *testing.T) {
	d := Describe("greet").Param("name", "string").Param("times", "number").Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()

	results, err := b.Bind(d, json.RawMessage(`{"name":"Ada","times":2}`), ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "Ada", results[0].Value)
	assert.True(t, results[1].Succeeded())
	assert.Equal(t, float64(2), results[1].Value)
}

func TestBind_ContextParamInjection(t *testing.T) {
	d := Describe("greet").ContextParam("ctx").Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()

	results, err := b.Bind(d, json.RawMessage(`{}`), ctx)
	require.NoError(t, err)
	assert.Same(t, ctx, results[0].Value)
}

func TestBind_AllowedRegexRejectsNonMatchingValue(t *testing.T) {
	d := Describe("greet").RegexParam("zip", "string", `^\d{5}$`).Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()

	results, err := b.Bind(d, json.RawMessage(`{"zip":"abc"}`), ctx)
	require.NoError(t, err)
	require.False(t, results[0].Succeeded())
	_, ok := results[0].Failure.(*DeserializationFailed)
	assert.True(t, ok)
}

func TestBind_AllowedRegexAcceptsMatchingValue(t *testing.T) {
	d := Describe("greet").RegexParam("zip", "string", `^\d{5}$`).Build()
	b := NewBinder(grammar.NewRegistry())
	ctx := exec.NewExecutionContext()

	results, err := b.Bind(d, json.RawMessage(`{"zip":"94107"}`), ctx)
	require.NoError(t, err)
	require.True(t, results[0].Succeeded())
	assert.Equal(t, "94107", results[0].Value)
}

const sqlGrammarForBindYAML = `
dsl:
  id: sxl-sql
  version: "1"
symbols:
  Q:
    kind: node
    params:
      - {name: from, type: node, allowed_symbols: ["F"], cardinality: required}
  F:
    kind: node
    params:
      - {name: table, type: identifier, cardinality: required}
reserved_symbols: ["EMBED"]
`

func TestBind_DSLParamValidatesAndParses(t *testing.T) {
	g, err := grammar.Load([]byte(sqlGrammarForBindYAML))
	require.NoError(t, err)
	reg := grammar.NewRegistry()
	require.NoError(t, reg.Add(g))

	d := Describe("runQuery").DSLParam("query", "sxl-sql").Build()
	b := NewBinder(reg)
	ctx := exec.NewExecutionContext()

	params, _ := json.Marshal(map[string]string{"query": "(Q (F orders))"})
	results, err := b.Bind(d, params, ctx)
	require.NoError(t, err)
	require.True(t, results[0].Succeeded())

	dv, ok := results[0].Value.(DSLValue)
	require.True(t, ok)
	assert.Len(t, dv.Nodes, 1)
}

func TestBind_DSLParamRejectsInvalidSource(t *testing.T) {
	g, err := grammar.Load([]byte(sqlGrammarForBindYAML))
	require.NoError(t, err)
	reg := grammar.NewRegistry()
	require.NoError(t, reg.Add(g))

	d := Describe("runQuery").DSLParam("query", "sxl-sql").Build()
	b := NewBinder(reg)
	ctx := exec.NewExecutionContext()

	params, _ := json.Marshal(map[string]string{"query": "(Q (BOGUS orders))"})
	results, err := b.Bind(d, params, ctx)
	require.NoError(t, err)
	assert.False(t, results[0].Succeeded())
}
