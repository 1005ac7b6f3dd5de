package action

import (
	"encoding/json"
	"fmt"
	"regexp"

	"sxlrun/internal/exec"
	"sxlrun/internal/grammar"
	"sxlrun/internal/sxl"
	"sxlrun/internal/validator"
)

// ArgumentResult is the tagged-union outcome of binding a single
// parameter: exactly one of Value or Failure is meaningful.
type ArgumentResult struct {
	Param   string
	Value   interface{}
	Failure error // nil means success
}

// Succeeded reports whether this argument bound cleanly.
func (a ArgumentResult) Succeeded() bool { return a.Failure == nil }

// DSLValue is the default host value produced for a dslId-bound
// parameter when no richer TypeHandler is registered for its TypeID: the
// parsed, grammar-validated AST plus the original source text.
type DSLValue struct {
	Source string
	Nodes  []sxl.Node
}

// TypeHandler converts a raw JSON parameter value into a host value for
// one typeId. Handlers are registered once at construction; the binder
// never reflects on the hot path beyond mapping by typeId.
type TypeHandler interface {
	TypeID() string
	FromJSON(raw json.RawMessage) (interface{}, error)
}

// Binder converts plan-step JSON parameters into bound host arguments.
type Binder struct {
	handlers map[string]TypeHandler
	grammars *grammar.Registry
}

// NewBinder constructs a Binder with the built-in primitive handlers
// registered (string, number, boolean, any, stringList) plus any DSL grammar
// registry needed to resolve dslId-bound string parameters.
func NewBinder(grammars *grammar.Registry) *Binder {
	b := &Binder{handlers: map[string]TypeHandler{}, grammars: grammars}
	for _, h := range builtinHandlers() {
		b.handlers[h.TypeID()] = h
	}
	return b
}

// RegisterTypeHandler adds or overrides the handler used for h.TypeID().
func (b *Binder) RegisterTypeHandler(h TypeHandler) {
	b.handlers[h.TypeID()] = h
}

// Bind resolves every parameter of descriptor against stepParamsJSON and
// ctx, in positional order. It never stops early: every parameter is
// attempted so a caller can report every failure at once, but the caller
// (the executor) must fail the step if any result is not Succeeded().
func (b *Binder) Bind(descriptor *ActionDescriptor, stepParamsJSON json.RawMessage, ctx *exec.ExecutionContext) ([]ArgumentResult, error) {
	var paramsMap map[string]json.RawMessage
	if len(stepParamsJSON) > 0 {
		if err := json.Unmarshal(stepParamsJSON, &paramsMap); err != nil {
			return nil, fmt.Errorf("action: invalid step parameters JSON for %q: %w", descriptor.ID, err)
		}
	}

	results := make([]ArgumentResult, len(descriptor.Parameters))
	for i, spec := range descriptor.Parameters {
		results[i] = b.bindOne(descriptor, spec, paramsMap, ctx)
	}
	return results, nil
}

func (b *Binder) bindOne(descriptor *ActionDescriptor, spec ParameterSpec, paramsMap map[string]json.RawMessage, ctx *exec.ExecutionContext) ArgumentResult {
	if spec.FromContext != "" {
		v, ok := ctx.Get(spec.FromContext)
		if !ok || !matchesTypeID(v, spec.TypeID) {
			return ArgumentResult{Param: spec.Name, Failure: &MissingContext{ActionID: descriptor.ID, Param: spec.Name, Key: spec.FromContext}}
		}
		return ArgumentResult{Param: spec.Name, Value: v}
	}

	if spec.TypeID == "ExecutionContext" {
		return ArgumentResult{Param: spec.Name, Value: ctx}
	}

	raw, ok := paramsMap[spec.Name]
	if !ok {
		return ArgumentResult{Param: spec.Name, Failure: &MissingArgument{ActionID: descriptor.ID, Param: spec.Name}}
	}

	if spec.DSLID != "" {
		v, err := b.resolveDSL(descriptor, spec, raw)
		if err != nil {
			return ArgumentResult{Param: spec.Name, Failure: err}
		}
		return ArgumentResult{Param: spec.Name, Value: v}
	}

	handler, ok := b.handlers[spec.TypeID]
	if !ok {
		return ArgumentResult{Param: spec.Name, Failure: &DeserializationFailed{
			ActionID: descriptor.ID, Param: spec.Name,
			FieldErrors: []error{fmt.Errorf("no type handler registered for typeId %q", spec.TypeID)},
			RawJSON:     raw,
		}}
	}
	v, err := handler.FromJSON(raw)
	if err != nil {
		return ArgumentResult{Param: spec.Name, Failure: &DeserializationFailed{
			ActionID: descriptor.ID, Param: spec.Name,
			FieldErrors: []error{err},
			RawJSON:     raw,
		}}
	}
	if spec.AllowedRegex != "" {
		if err := checkAllowedRegex(spec, v, raw); err != nil {
			return ArgumentResult{Param: spec.Name, Failure: &DeserializationFailed{
				ActionID: descriptor.ID, Param: spec.Name,
				FieldErrors: []error{err},
				RawJSON:     raw,
			}}
		}
	}
	return ArgumentResult{Param: spec.Name, Value: v}
}

// matchesTypeID reports whether a context-resolved value satisfies the
// parameter's declared type id. A value of the wrong shape fails the
// bind the same way an absent key does; unknown type ids accept any
// value, since richer host types are the host's own to check.
func matchesTypeID(v interface{}, typeID string) bool {
	switch typeID {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		_, ok := v.(float64)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "stringList":
		_, ok := v.([]string)
		return ok
	default:
		return true
	}
}

// checkAllowedRegex enforces ParameterSpec.AllowedRegex against a
// string-valued argument after type conversion. Non-string values have
// nothing textual to match and are left alone.
func checkAllowedRegex(spec ParameterSpec, v interface{}, raw json.RawMessage) error {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	re, err := regexp.Compile(spec.AllowedRegex)
	if err != nil {
		return fmt.Errorf("parameter %q: invalid allowedRegex %q: %w", spec.Name, spec.AllowedRegex, err)
	}
	if !re.MatchString(s) {
		return fmt.Errorf("parameter %q: value %q does not match allowed pattern %q", spec.Name, s, spec.AllowedRegex)
	}
	return nil
}

func (b *Binder) resolveDSL(descriptor *ActionDescriptor, spec ParameterSpec, raw json.RawMessage) (interface{}, error) {
	var source string
	if err := json.Unmarshal(raw, &source); err != nil {
		return nil, &DeserializationFailed{
			ActionID: descriptor.ID, Param: spec.Name,
			FieldErrors: []error{fmt.Errorf("dsl parameter %q must be a JSON string: %w", spec.Name, err)},
			RawJSON:     raw,
		}
	}

	nodes, err := sxl.ParseAll(source)
	if err != nil {
		return nil, &DeserializationFailed{
			ActionID: descriptor.ID, Param: spec.Name,
			FieldErrors: []error{err},
			RawJSON:     raw,
		}
	}

	g, found := b.grammars.Lookup(spec.DSLID)
	if !found {
		return nil, &DeserializationFailed{
			ActionID: descriptor.ID, Param: spec.Name,
			FieldErrors: []error{fmt.Errorf("unknown dsl id %q", spec.DSLID)},
			RawJSON:     raw,
		}
	}
	if err := validator.Validate(nodes, g, b.grammars); err != nil {
		return nil, &DeserializationFailed{
			ActionID: descriptor.ID, Param: spec.Name,
			FieldErrors: []error{err},
			RawJSON:     raw,
		}
	}

	if handler, ok := b.handlers["dsl:"+spec.DSLID]; ok {
		return handler.FromJSON(raw)
	}
	return DSLValue{Source: source, Nodes: nodes}, nil
}
