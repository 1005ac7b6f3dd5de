package prompt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxlrun/internal/action"
	"sxlrun/internal/grammar"
)

const planGrammar = `
dsl: {id: sxl-plan, version: "1"}
symbols:
  STEP:
    kind: node
    params:
      - {name: action, type: identifier, cardinality: required}
reserved_symbols: ["EMBED"]
llm_specs:
  defaults: "A step invokes an action."
`

const sqlGrammar = `
dsl: {id: sxl-sql, version: "1"}
symbols:
  Q:
    kind: node
    params:
      - {name: from, type: node, allowed_symbols: ["F"], cardinality: required}
reserved_symbols: ["EMBED"]
llm_specs:
  defaults: "A query selects from a table."
`

func setup(t *testing.T) (*action.Registry, *grammar.Registry) {
	t.Helper()
	reg := action.NewRegistry()
	require.NoError(t, reg.Register(action.Describe("runQuery").Description("runs a query").DSLParam("query", "sxl-sql").Build()))

	gr := grammar.NewRegistry()
	planG, err := grammar.Load([]byte(planGrammar))
	require.NoError(t, err)
	sqlG, err := grammar.Load([]byte(sqlGrammar))
	require.NoError(t, err)
	require.NoError(t, gr.Add(planG))
	require.NoError(t, gr.Add(sqlG))
	return reg, gr
}

func TestBuild_SXLModeOrdersUniversalThenPlanThenAlphabetical(t *testing.T) {
	reg, gr := setup(t)

	out, err := Build(BuildRequest{
		Registry: reg,
		Grammars: gr,
		Mode:     ModeSXL,
		ExamplePlan: func() string { return "(STEP runQuery (EMBED sxl-sql (Q (F orders))))" },
	})
	require.NoError(t, err)

	assert.Contains(t, out, "DSL GUIDANCE:")
	planIdx := indexOf(out, "DSL sxl-plan:")
	sqlIdx := indexOf(out, "DSL sxl-sql:")
	exampleIdx := indexOf(out, "EXAMPLE PLAN:")
	require.True(t, planIdx >= 0 && sqlIdx >= 0 && exampleIdx >= 0)
	assert.True(t, planIdx < exampleIdx)
	assert.True(t, exampleIdx < sqlIdx)
	assert.Contains(t, out, "runQuery: runs a query")
}

func TestBuild_JSONMode(t *testing.T) {
	reg, gr := setup(t)

	out, err := Build(BuildRequest{Registry: reg, Grammars: gr, Mode: ModeJSON})
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Contains(t, parsed, "actions")
	assert.Contains(t, parsed, "dslGuidance")
	assert.Contains(t, parsed, "dslSchemas")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
