package validator

import (
	"fmt"
	"strings"

	"sxlrun/internal/grammar"
	"sxlrun/internal/sxl"
)

// validateParams matches sym.Args against def.Params positionally.
// Ordered matching (the default; unordered parameters are future work)
// advances a single cursor through the argument list: a
// required/optional/oneOrMore/zeroOrMore slot consumes as many leading
// unconsumed arguments as its cardinality and category allow, and a
// non-matching argument stops that slot without consuming -- it is left
// for the next ParameterDefinition.
func validateParams(sym *sxl.Symbol, def grammar.SymbolDefinition, g *grammar.SxlGrammar, registry *grammar.Registry, state ValidationState) error {
	childState := state.push(sym.Name)
	cursor := 0
	args := sym.Args

	for _, pd := range def.Params {
		count := 0
		for cursor < len(args) {
			arg := args[cursor]
			isCategory, categoryErr := categoryMatch(arg, pd, g)
			if !isCategory {
				break
			}
			if categoryErr != nil {
				return categoryErr
			}
			if err := validateArgDetail(arg, pd, g, registry, childState); err != nil {
				return err
			}
			cursor++
			count++
			if (pd.Cardinality == grammar.Required || pd.Cardinality == grammar.Optional) && count >= 1 {
				break
			}
		}
		switch pd.Cardinality {
		case grammar.Required, grammar.OneOrMore:
			if count == 0 {
				return &ValidationError{
					Kind:         KindCardinalityViolation,
					ContextChain: childState.ContextChain,
					Symbol:       sym.Name,
					Param:        pd.Name,
					Position:     sym.Position,
					Message:      fmt.Sprintf("parameter %q requires at least one argument", pd.Name),
				}
			}
		}
	}

	if cursor < len(args) {
		return &ValidationError{
			Kind:         KindCardinalityViolation,
			ContextChain: childState.ContextChain,
			Symbol:       sym.Name,
			Position:     args[cursor].Pos(),
			Message:      fmt.Sprintf("unexpected trailing argument to %q", sym.Name),
		}
	}
	return nil
}

// categoryMatch performs the broad, type-agnostic half of parameter
// matching. A true result with a non-nil error means the argument is
// in-category but already known to fail detailed validation
// (e.g. a literal of the wrong kind) -- the caller must surface that
// error rather than silently advancing to the next parameter.
func categoryMatch(arg sxl.Node, pd grammar.ParameterDefinition, g *grammar.SxlGrammar) (bool, error) {
	t := pd.Type

	if t == "any" {
		return true, nil
	}

	if strings.HasPrefix(t, "literal(") {
		lit, ok := arg.(*sxl.Literal)
		if !ok {
			return false, nil
		}
		kinds := parseLiteralKinds(t)
		if literalMatchesAnyKind(lit, kinds, g) {
			return true, nil
		}
		return true, &ValidationError{
			Kind:     KindTypeMismatch,
			Param:    pd.Name,
			Position: lit.Position,
			Message:  fmt.Sprintf("literal %q does not satisfy any of %v", lit.Raw, kinds),
		}
	}

	if t == "identifier" {
		sym, ok := arg.(*sxl.Symbol)
		if !ok || len(sym.Args) != 0 {
			return false, nil
		}
		return true, validateIdentifierArg(sym, pd, g)
	}

	if t == "node" || t == "embedded" {
		// Any symbol-shaped argument is in-category, bare identifiers
		// included: an identifier where a node is expected is rejected in
		// detail validation unless listed in allowed_symbols, rather than
		// silently skipped past the slot.
		_, ok := arg.(*sxl.Symbol)
		return ok, nil
	}

	if t == "dsl-id" {
		sym, ok := arg.(*sxl.Symbol)
		if !ok || len(sym.Args) != 0 {
			return false, nil
		}
		return true, nil
	}

	return false, nil
}

// validateArgDetail runs the detailed check that produced categoryMatch's
// verdict, recursing into node children so their own parameters get
// validated too.
func validateArgDetail(arg sxl.Node, pd grammar.ParameterDefinition, g *grammar.SxlGrammar, registry *grammar.Registry, state ValidationState) error {
	sym, ok := arg.(*sxl.Symbol)
	if !ok {
		return nil // literals were already fully checked in categoryMatch
	}
	if sym.Name == grammar.EMBED {
		return validateEmbed(sym, registry, state)
	}
	if pd.Type == "node" || pd.Type == "embedded" {
		if len(pd.AllowedSymbols) > 0 && !contains(pd.AllowedSymbols, sym.Name) {
			if _, defined := g.Symbols[sym.Name]; !defined {
				return &ValidationError{
					Kind:         KindUnknownSymbol,
					ContextChain: state.ContextChain,
					Symbol:       sym.Name,
					Param:        pd.Name,
					Position:     sym.Position,
					Message:      fmt.Sprintf("unknown symbol %q", sym.Name),
					KnownSymbols: sortedKeys(g.Symbols),
				}
			}
			return &ValidationError{
				Kind:         KindTypeMismatch,
				ContextChain: state.ContextChain,
				Symbol:       sym.Name,
				Param:        pd.Name,
				Position:     sym.Position,
				Message:      fmt.Sprintf("symbol %q is not allowed for parameter %q (allowed: %s)", sym.Name, pd.Name, strings.Join(pd.AllowedSymbols, ", ")),
			}
		}
		if _, defined := g.Symbols[sym.Name]; !defined && len(pd.AllowedSymbols) == 0 {
			return &ValidationError{
				Kind:         KindUnknownSymbol,
				ContextChain: state.ContextChain,
				Symbol:       sym.Name,
				Param:        pd.Name,
				Position:     sym.Position,
				Message:      fmt.Sprintf("unknown symbol %q", sym.Name),
				KnownSymbols: sortedKeys(g.Symbols),
			}
		}
		return validateNode(sym, g, registry, state, false)
	}
	return nil
}

func validateIdentifierArg(sym *sxl.Symbol, pd grammar.ParameterDefinition, g *grammar.SxlGrammar) error {
	if len(pd.AllowedSymbols) == 0 {
		if _, isDefined := g.Symbols[sym.Name]; isDefined {
			return &ValidationError{
				Kind:     KindTypeMismatch,
				Symbol:   sym.Name,
				Param:    pd.Name,
				Position: sym.Position,
				Message:  fmt.Sprintf("%q is a defined symbol, not a valid identifier here", sym.Name),
			}
		}
	} else if !contains(pd.AllowedSymbols, sym.Name) {
		if _, isDefined := g.Symbols[sym.Name]; isDefined {
			return &ValidationError{
				Kind:     KindTypeMismatch,
				Symbol:   sym.Name,
				Param:    pd.Name,
				Position: sym.Position,
				Message:  fmt.Sprintf("%q is not among allowed symbols for parameter %q", sym.Name, pd.Name),
			}
		}
	}

	pattern := g.Identifier.Pattern
	if pd.IdentifierRules != nil && pd.IdentifierRules.Pattern != "" {
		pattern = pd.IdentifierRules.Pattern
	}
	re, err := compileIdentifierPattern(pattern)
	if err != nil || re == nil {
		return nil
	}
	if !re.MatchString(sym.Name) {
		return &ValidationError{
			Kind:     KindIdentifierPatternViolation,
			Symbol:   sym.Name,
			Param:    pd.Name,
			Position: sym.Position,
			Message:  fmt.Sprintf("identifier %q does not match pattern %s", sym.Name, pattern),
		}
	}
	return nil
}

func parseLiteralKinds(t string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(t, "literal("), ")")
	return strings.Split(inner, "|")
}

func literalMatchesAnyKind(lit *sxl.Literal, kinds []string, g *grammar.SxlGrammar) bool {
	for _, k := range kinds {
		if literalMatchesKind(lit, strings.TrimSpace(k), g) {
			return true
		}
	}
	return false
}

func literalMatchesKind(lit *sxl.Literal, kind string, g *grammar.SxlGrammar) bool {
	switch kind {
	case "string":
		if !lit.Quoted {
			return false
		}
		return matchRegexOrAny(g.Literals.String.Regex, lit.Raw)
	case "number":
		if lit.Quoted {
			return false
		}
		return matchRegexOrAny(g.Literals.Number.Regex, lit.Raw)
	case "boolean":
		return containsValue(g.Literals.Boolean.Values, lit.Raw) || lit.Raw == "true" || lit.Raw == "false"
	case "null":
		return containsValue(g.Literals.Null.Values, lit.Raw) || lit.Raw == "null"
	default:
		return false
	}
}

func matchRegexOrAny(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	re, err := compileIdentifierPattern(pattern)
	if err != nil || re == nil {
		return true
	}
	return re.MatchString(value)
}

func containsValue(values []string, v string) bool {
	return contains(values, v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
