package validator

// Diagnostic is a structured, serializable validation outcome rather
// than a bare error string. ToDiagnostic converts a ValidationError
// into one for callers (e.g. the CLI) that want to render or log
// validation results as data rather than text.
type Diagnostic struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Symbol   string `json:"symbol,omitempty"`
	Context  string `json:"context,omitempty"`
	Critical bool   `json:"critical"`
}

// ToDiagnostic converts a ValidationError to its serializable Diagnostic
// form. Every ValidationError is currently treated as Critical: the
// validator fails fast, so anything reaching this conversion aborted
// validation rather than being a soft warning.
func (e *ValidationError) ToDiagnostic() Diagnostic {
	return Diagnostic{
		Type:     string(e.Kind),
		Message:  e.Message,
		Line:     e.Position.Line,
		Column:   e.Position.Column,
		Symbol:   e.Symbol,
		Context:  e.ChainString(),
		Critical: true,
	}
}
