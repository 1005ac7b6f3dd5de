package validator

import (
	"fmt"
	"strings"

	"sxlrun/internal/sxl"
)

// Kind enumerates the SXL-layer error taxonomy. Parse errors are
// produced by the sxl package itself and are not re-wrapped here.
type Kind string

const (
	KindUnknownSymbol              Kind = "UnknownSymbol"
	KindReservedAsSymbol           Kind = "ReservedAsSymbol"
	KindUnknownDSL                 Kind = "UnknownDSL"
	KindCardinalityViolation       Kind = "CardinalityViolation"
	KindTypeMismatch               Kind = "TypeMismatch"
	KindIdentifierPatternViolation Kind = "IdentifierPatternViolation"
	KindGlobalConstraintViolation  Kind = "GlobalConstraintViolation"
	KindMalformedEmbed             Kind = "MalformedEmbed"
)

// ValidationError is the error type every validation failure surfaces as.
// ContextChain is the dotted path through nested EMBEDs (e.g.
// "EMBED.sxl-sql.Q"); KnownSymbols is populated (sorted) for UnknownSymbol.
type ValidationError struct {
	Kind         Kind
	ContextChain []string
	Symbol       string
	Param        string
	Position     sxl.Position
	Message      string
	KnownSymbols []string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "validator: %s", e.Kind)
	if len(e.ContextChain) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(e.ContextChain, "."))
	}
	if e.Symbol != "" {
		fmt.Fprintf(&sb, " symbol=%s", e.Symbol)
	}
	if e.Param != "" {
		fmt.Fprintf(&sb, " param=%s", e.Param)
	}
	fmt.Fprintf(&sb, " at %s: %s", e.Position, e.Message)
	if len(e.KnownSymbols) > 0 {
		fmt.Fprintf(&sb, " (known symbols: %s)", strings.Join(e.KnownSymbols, ", "))
	}
	return sb.String()
}

// ChainString renders the dotted context chain, e.g. "EMBED.sxl-sql.Q".
func (e *ValidationError) ChainString() string {
	return strings.Join(e.ContextChain, ".")
}
