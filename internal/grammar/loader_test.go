package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalGrammarYAML = `
meta_grammar_version: "1"
dsl:
  id: sxl-sql
  description: a tiny SQL-like DSL
  version: "1"
symbols:
  Q:
    description: query
    kind: node
    params:
      - name: from
        type: node
        allowed_symbols: ["F"]
        cardinality: required
      - name: select
        type: node
        allowed_symbols: ["S"]
        cardinality: optional
  F:
    description: from clause
    kind: node
    params:
      - name: table
        type: identifier
        cardinality: required
      - name: alias
        type: identifier
        cardinality: optional
  S:
    description: select clause
    kind: node
    params:
      - name: columns
        type: node
        allowed_symbols: ["AS"]
        cardinality: zeroOrMore
  AS:
    description: aliased column
    kind: node
    params:
      - name: column
        type: identifier
        cardinality: required
      - name: alias
        type: identifier
        cardinality: required
literals:
  string:
    regex: "^.*$"
  number:
    regex: "^[0-9]+(\\.[0-9]+)?$"
reserved_symbols: ["EMBED"]
`

func TestLoad_Minimal(t *testing.T) {
	g, err := Load([]byte(minimalGrammarYAML))
	require.NoError(t, err)
	assert.Equal(t, "sxl-sql", g.DSL.ID)
	assert.Len(t, g.Symbols, 4)
	assert.Equal(t, []string{"Q", "F", "S", "AS"}, g.SymbolOrder)
}

func TestLoad_RejectsReservedEmbedSymbol(t *testing.T) {
	const yaml = `
dsl:
  id: bad-dsl
symbols:
  EMBED:
    kind: node
`
	_, err := Load([]byte(yaml))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMBED")
	assert.Contains(t, err.Error(), "reserved")
}

func TestLoad_RequiresDSLID(t *testing.T) {
	_, err := Load([]byte("symbols: {}\n"))
	require.Error(t, err)
}

func TestRegistry_AddAndLookup(t *testing.T) {
	g, err := Load([]byte(minimalGrammarYAML))
	require.NoError(t, err)

	r := NewRegistry()
	require.NoError(t, r.Add(g))

	got, ok := r.Lookup("sxl-sql")
	require.True(t, ok)
	assert.Same(t, g, got)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Error(t, r.Add(g))
}
