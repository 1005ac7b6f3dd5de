package validator

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"sxlrun/internal/grammar"
	"sxlrun/internal/sxl"
)

// ValidationState carries the only mutable state threaded through a
// validation pass: the dotted context chain built up as EMBED nests one
// DSL inside another. Source positions are not tracked here -- they live
// directly on each sxl.Node, so there is no separate position map to
// carry.
type ValidationState struct {
	ContextChain []string
}

func (s ValidationState) push(segment string) ValidationState {
	chain := make([]string, len(s.ContextChain), len(s.ContextChain)+1)
	copy(chain, s.ContextChain)
	chain = append(chain, segment)
	return ValidationState{ContextChain: chain}
}

// Validate checks a top-level sequence of SXL nodes against g, resolving
// any EMBED subtree against registry. Validation fails fast: the first
// violation found is returned.
func Validate(nodes []sxl.Node, g *grammar.SxlGrammar, registry *grammar.Registry) error {
	state := ValidationState{ContextChain: []string{g.DSL.ID}}

	for i, n := range nodes {
		if err := validateNode(n, g, registry, state, true); err != nil {
			return err
		}
		if i == 0 {
			if err := checkMustHaveRoot(n, g, state); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkMustHaveRoot(first sxl.Node, g *grammar.SxlGrammar, state ValidationState) error {
	for _, c := range g.Constraints {
		if c.Rule != "must_have_root" {
			continue
		}
		sym, ok := first.(*sxl.Symbol)
		if !ok || sym.Name != c.Symbol {
			return &ValidationError{
				Kind:         KindGlobalConstraintViolation,
				ContextChain: state.ContextChain,
				Symbol:       c.Symbol,
				Position:     first.Pos(),
				Message:      fmt.Sprintf("must_have_root requires the first top-level expression to be %q", c.Symbol),
			}
		}
	}
	return nil
}

// validateNode validates one node as a "node"-category value: if it is a
// Symbol call, its symbol (or EMBED) is resolved and its parameters
// checked; a zero-arg Symbol below the top level is a bare identifier
// whose type-level validation is deferred to the parameter matcher.
func validateNode(n sxl.Node, g *grammar.SxlGrammar, registry *grammar.Registry, state ValidationState, isTopLevel bool) error {
	sym, ok := n.(*sxl.Symbol)
	if !ok {
		// A Literal has no symbol to resolve. Top-level expressions and
		// EMBED payloads reach here unfiltered, so a literal in either
		// position is accepted without further checks.
		return nil
	}

	if sym.Name == grammar.EMBED {
		return validateEmbed(sym, registry, state)
	}

	if len(sym.Args) == 0 && !isTopLevel {
		// Bare identifier used where a node might be expected; the
		// parameter-level matcher decides whether this is acceptable.
		return nil
	}

	def, found := g.Symbols[sym.Name]
	if !found {
		if g.ReservedSymbolSet()[sym.Name] {
			return &ValidationError{
				Kind:         KindReservedAsSymbol,
				ContextChain: state.ContextChain,
				Symbol:       sym.Name,
				Position:     sym.Position,
				Message:      fmt.Sprintf("%q is reserved and cannot be used as a symbol", sym.Name),
			}
		}
		return &ValidationError{
			Kind:         KindUnknownSymbol,
			ContextChain: state.ContextChain,
			Symbol:       sym.Name,
			Position:     sym.Position,
			Message:      fmt.Sprintf("unknown symbol %q", sym.Name),
			KnownSymbols: sortedKeys(g.Symbols),
		}
	}

	return validateParams(sym, def, g, registry, state)
}

func sortedKeys(m map[string]grammar.SymbolDefinition) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// validateEmbed handles `(EMBED <dslId> <payload>...)`.
func validateEmbed(sym *sxl.Symbol, registry *grammar.Registry, state ValidationState) error {
	if len(sym.Args) < 2 {
		return &ValidationError{
			Kind:         KindMalformedEmbed,
			ContextChain: state.ContextChain,
			Symbol:       grammar.EMBED,
			Position:     sym.Position,
			Message:      "EMBED requires a dsl id identifier followed by at least one payload node",
		}
	}

	dslIDNode := sym.Args[0]
	dslIDSym, ok := dslIDNode.(*sxl.Symbol)
	if !ok || len(dslIDSym.Args) != 0 {
		return &ValidationError{
			Kind:         KindMalformedEmbed,
			ContextChain: state.ContextChain,
			Symbol:       grammar.EMBED,
			Position:     dslIDNode.Pos(),
			Message:      "EMBED's first argument must be a bare dsl id identifier",
		}
	}

	target, found := registry.Lookup(dslIDSym.Name)
	if !found {
		return &ValidationError{
			Kind:         KindUnknownDSL,
			ContextChain: state.ContextChain,
			Symbol:       dslIDSym.Name,
			Position:     dslIDSym.Position,
			Message:      fmt.Sprintf("unknown dsl id %q", dslIDSym.Name),
		}
	}

	childState := state.push(grammar.EMBED).push(target.DSL.ID)

	payloads := sym.Args[1:]
	for i, p := range payloads {
		if err := validateNode(p, target, registry, childState, true); err != nil {
			return err
		}
		if i == 0 {
			if err := checkMustHaveRoot(p, target, childState); err != nil {
				return err
			}
		}
	}
	return nil
}

// identCache memoizes compiled identifier/literal patterns across calls.
// A sync.Map, not a plain map: concurrent Validate calls from different
// goroutines would race on a plain cache.
var identCache sync.Map

func compileIdentifierPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	if cached, ok := identCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := identCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}
