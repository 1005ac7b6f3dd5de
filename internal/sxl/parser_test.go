package sxl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAll_RoundTrip(t *testing.T) {
	cases := []string{
		`(Q (F orders o) (S (AS o.id id)))`,
		`foo`,
		`"a string"`,
		`42`,
		`(EMBED sxl-sql (Q (F orders o)))`,
	}
	for _, src := range cases {
		nodes, err := ParseAll(src)
		require.NoError(t, err, src)
		require.Len(t, nodes, 1)

		rendered := String(nodes[0])
		reparsed, err := ParseAll(rendered)
		require.NoError(t, err, rendered)
		require.Len(t, reparsed, 1)
		assert.Equal(t, String(reparsed[0]), rendered)
	}
}

func TestParseAll_CommaSeparator(t *testing.T) {
	nodes, err := ParseAll(`(F a, b, c)`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	sym := nodes[0].(*Symbol)
	assert.Equal(t, "F", sym.Name)
	assert.Len(t, sym.Args, 3)
}

func TestParseAll_EmptyExpression(t *testing.T) {
	_, err := ParseAll(`()`)
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindEmptyExpression, pe.Kind)
}

func TestParseAll_UnmatchedParen(t *testing.T) {
	_, err := ParseAll(`(F a`)
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindUnmatchedParen, pe.Kind)
}

func TestParseAll_UnexpectedRParen(t *testing.T) {
	_, err := ParseAll(`F a)`)
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindUnexpectedRParen, pe.Kind)
}

func TestParseAll_BareIdentifierIsZeroArgSymbol(t *testing.T) {
	nodes, err := ParseAll(`bareword`)
	require.NoError(t, err)
	sym, ok := nodes[0].(*Symbol)
	require.True(t, ok)
	assert.True(t, sym.IsIdentifier())
}

func TestParseAll_MultipleTopLevelExpressions(t *testing.T) {
	nodes, err := ParseAll(`(A 1) (B 2)`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
}
