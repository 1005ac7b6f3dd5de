package action

import (
	"fmt"
	"strings"
	"time"
)

// Builder constructs an ActionDescriptor via a fluent call chain: a
// host declares one action per Describe(...).Register(registry) chain,
// built once at process initialization. There is no runtime reflection
// over host types; the descriptor is a plain data value.
type Builder struct {
	d ActionDescriptor
}

// Describe starts a new descriptor for the given action id.
func Describe(id string) *Builder {
	return &Builder{d: ActionDescriptor{ID: id, Mutability: ReadOnly, MaxRetries: 0}}
}

func (b *Builder) Description(s string) *Builder {
	b.d.Description = s
	return b
}

// Param appends a plain (non-context, non-DSL) parameter of the given
// type id.
func (b *Builder) Param(name, typeID string) *Builder {
	b.d.Parameters = append(b.d.Parameters, ParameterSpec{Name: name, TypeID: typeID})
	return b
}

// RegexParam appends a plain string parameter whose bound value must
// match allowedRegex.
func (b *Builder) RegexParam(name, typeID, allowedRegex string) *Builder {
	b.d.Parameters = append(b.d.Parameters, ParameterSpec{Name: name, TypeID: typeID, AllowedRegex: allowedRegex})
	return b
}

// DSLParam appends a parameter whose JSON value is a string of SXL source
// in the named DSL.
func (b *Builder) DSLParam(name, dslID string) *Builder {
	b.d.Parameters = append(b.d.Parameters, ParameterSpec{Name: name, TypeID: "sxl", DSLID: dslID})
	return b
}

// FromContextParam appends a parameter bound from the execution context
// at invocation time rather than from the step's JSON parameters.
func (b *Builder) FromContextParam(name, typeID, contextKey string) *Builder {
	b.d.Parameters = append(b.d.Parameters, ParameterSpec{Name: name, TypeID: typeID, FromContext: contextKey})
	return b
}

// ContextParam appends a parameter of type ExecutionContext, injected
// directly by the binder.
func (b *Builder) ContextParam(name string) *Builder {
	b.d.Parameters = append(b.d.Parameters, ParameterSpec{Name: name, TypeID: "ExecutionContext"})
	return b
}

func (b *Builder) Examples(examples ...string) *Builder {
	b.d.Examples = append(b.d.Examples, examples...)
	return b
}

func (b *Builder) Mutates() *Builder {
	b.d.Mutability = Mutate
	return b
}

func (b *Builder) Cost(cost int) *Builder {
	b.d.Cost = cost
	return b
}

func (b *Builder) Priority(p int) *Builder {
	b.d.Priority = p
	return b
}

// Reads declares the resources this action reads. Advisory: a parallel
// scheduler flags a read concurrent with a write of the same resource
// but does not serialize them.
func (b *Builder) Reads(resources ...string) *Builder {
	b.d.ResourceReads = resources
	return b
}

// Writes declares the resources this action writes.
func (b *Builder) Writes(resources ...string) *Builder {
	b.d.ResourceWrites = resources
	return b
}

// Affinities sets affinity templates, e.g. "orders:{customerId}"; a step
// binder resolves "{name}" placeholders against dotted-path step
// parameters at metadata-build time.
func (b *Builder) Affinities(affinities ...string) *Builder {
	b.d.Affinities = affinities
	return b
}

func (b *Builder) ProducesContext(primaryKey string, additional ...string) *Builder {
	b.d.ContextKey = primaryKey
	b.d.AdditionalContextKeys = additional
	return b
}

func (b *Builder) Idempotent() *Builder {
	b.d.Idempotent = true
	return b
}

func (b *Builder) MaxRetries(n int) *Builder {
	b.d.MaxRetries = n
	return b
}

func (b *Builder) Timeout(d time.Duration) *Builder {
	b.d.Timeout = d
	return b
}

// Build finalizes and returns the descriptor without registering it.
func (b *Builder) Build() *ActionDescriptor {
	d := b.d
	d.Parameters = append([]ParameterSpec(nil), b.d.Parameters...)
	return &d
}

// Register finalizes the descriptor and registers it into r.
func (b *Builder) Register(r *Registry) error {
	return r.Register(b.Build())
}

// ResolveAffinities expands "{name}" placeholders in templates against a
// flattened dotted-path view of params (nested objects produce
// "outer.inner" keys).
func ResolveAffinities(templates []string, flatParams map[string]string) []string {
	out := make([]string, len(templates))
	for i, tmpl := range templates {
		out[i] = expandTemplate(tmpl, flatParams)
	}
	return out
}

func expandTemplate(tmpl string, flat map[string]string) string {
	var sb strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end >= 0 {
				key := tmpl[i+1 : i+end]
				sb.WriteString(flat[key])
				i += end + 1
				continue
			}
		}
		sb.WriteByte(tmpl[i])
		i++
	}
	return sb.String()
}

// FlattenParams converts a nested JSON-ish map into dotted-path keys,
// e.g. {"customer":{"id":"7"}} -> {"customer.id":"7"}.
func FlattenParams(params map[string]interface{}) map[string]string {
	out := map[string]string{}
	flattenInto(params, "", out)
	return out
}

func flattenInto(v interface{}, prefix string, out map[string]string) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, nested := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenInto(nested, key, out)
		}
	default:
		out[prefix] = toStringValue(val)
	}
}

func toStringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
