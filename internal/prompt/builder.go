// Package prompt assembles system prompts from the action catalog and
// DSL grammars: model-facing guidance combining an action catalog
// summary, per-DSL grammar guidance, and mode-specific scaffolding.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"sxlrun/internal/action"
	"sxlrun/internal/grammar"
)

// Mode selects whether action parameter payloads are expressed as
// S-expressions or as JSON in the assembled guidance.
type Mode string

const (
	ModeSXL  Mode = "sxl"
	ModeJSON Mode = "json"
)

// Filter decides whether a descriptor is included in the prompt's action
// catalog.
type Filter func(*action.ActionDescriptor) bool

// IncludeAll is a Filter that selects every registered action.
func IncludeAll(*action.ActionDescriptor) bool { return true }

// Contributor appends DSL-specific context beyond the grammar itself
// (e.g. available actions for sxl-plan, a SQL catalog for sxl-sql).
type Contributor interface {
	// DSLIDs returns the dsl ids this contributor wants represented, even
	// if no selected action parameter references them.
	DSLIDs() []string
	// Contribute returns extra guidance text for dslID, or "" if this
	// contributor has nothing to add for it.
	Contribute(dslID string) string
}

// ExamplePlanProvider supplies the EXAMPLE PLAN block inserted directly
// after the sxl-plan section in SXL mode.
type ExamplePlanProvider func() string

// BuildRequest bundles every input to Build.
type BuildRequest struct {
	Registry     *action.Registry
	Filter       Filter
	Grammars     *grammar.Registry
	Mode         Mode
	Contributors []Contributor
	ExamplePlan  ExamplePlanProvider
	Provider     string
	Model        string
}

// Build assembles the system prompt for the selected actions and the
// DSLs they reference.
func Build(req BuildRequest) (string, error) {
	filter := req.Filter
	if filter == nil {
		filter = IncludeAll
	}

	var selected []*action.ActionDescriptor
	for _, d := range req.Registry.All() {
		if filter(d) {
			selected = append(selected, d)
		}
	}

	dslIDs := collectDSLIDs(selected, req.Contributors, req.Grammars)
	orderedIDs := orderDSLIDs(dslIDs)

	switch req.Mode {
	case ModeJSON:
		return buildJSON(selected, orderedIDs, req)
	default:
		return buildSXL(selected, orderedIDs, req)
	}
}

func collectDSLIDs(selected []*action.ActionDescriptor, contributors []Contributor, grammars *grammar.Registry) map[string]bool {
	ids := map[string]bool{}
	for _, d := range selected {
		for _, p := range d.Parameters {
			if p.DSLID != "" {
				ids[p.DSLID] = true
			}
		}
	}
	for _, c := range contributors {
		for _, id := range c.DSLIDs() {
			ids[id] = true
		}
	}
	if grammars != nil {
		if _, ok := grammars.Lookup("sxl-universal"); ok {
			ids["sxl-universal"] = true
		}
		if _, ok := grammars.Lookup("sxl-plan"); ok {
			ids["sxl-plan"] = true
		}
	}
	return ids
}

// orderDSLIDs places sxl-universal first, sxl-plan second, then the
// remainder alphabetically.
func orderDSLIDs(ids map[string]bool) []string {
	var rest []string
	for id := range ids {
		if id != "sxl-universal" && id != "sxl-plan" {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)

	var out []string
	if ids["sxl-universal"] {
		out = append(out, "sxl-universal")
	}
	if ids["sxl-plan"] {
		out = append(out, "sxl-plan")
	}
	return append(out, rest...)
}

func resolveGuidance(dslID string, req BuildRequest) string {
	var body strings.Builder

	if req.Grammars != nil {
		if g, ok := req.Grammars.Lookup(dslID); ok {
			body.WriteString(g.LLMSpecs.For(req.Provider, req.Model))
			if req.Mode != ModeJSON {
				body.WriteString("\n")
				body.WriteString(grammarSummary(g))
			}
		}
	}

	for _, c := range req.Contributors {
		if extra := c.Contribute(dslID); extra != "" {
			body.WriteString("\n")
			body.WriteString(extra)
		}
	}

	return strings.TrimRight(body.String(), "\n")
}

// grammarSummary renders symbols (name, kind, params with
// name:type(cardinality){allowed=...}) and reserved symbols.
func grammarSummary(g *grammar.SxlGrammar) string {
	var sb strings.Builder
	names := g.SymbolOrder
	if len(names) == 0 {
		for name := range g.Symbols {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		def := g.Symbols[name]
		fmt.Fprintf(&sb, "  %s (%s):", name, def.Kind)
		for _, p := range def.Params {
			fmt.Fprintf(&sb, " %s:%s(%s)", p.Name, p.Type, p.Cardinality)
			if len(p.AllowedSymbols) > 0 {
				fmt.Fprintf(&sb, "{allowed=%s}", strings.Join(p.AllowedSymbols, "|"))
			}
		}
		sb.WriteString("\n")
	}
	if len(g.ReservedSymbols) > 0 {
		fmt.Fprintf(&sb, "  reserved: %s\n", strings.Join(g.ReservedSymbols, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func buildSXL(selected []*action.ActionDescriptor, orderedIDs []string, req BuildRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("DSL GUIDANCE:\n")

	var blocks []string
	for _, id := range orderedIDs {
		block := fmt.Sprintf("DSL %s:\n%s", id, resolveGuidance(id, req))
		blocks = append(blocks, block)
		if id == "sxl-plan" && req.ExamplePlan != nil {
			if example := req.ExamplePlan(); example != "" {
				blocks = append(blocks, "EXAMPLE PLAN:\n"+example)
			}
		}
	}
	sb.WriteString(strings.Join(blocks, "\n\n"))

	if len(selected) > 0 {
		sb.WriteString("\n\nACTIONS:\n")
		for _, d := range selected {
			fmt.Fprintf(&sb, "  %s: %s\n", d.ID, d.Description)
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}

type jsonPrompt struct {
	Actions     []jsonAction                   `json:"actions"`
	DSLGuidance map[string]string              `json:"dslGuidance"`
	DSLSchemas  map[string]*grammar.SxlGrammar `json:"dslSchemas"`
}

type jsonAction struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Parameters  []action.ParameterSpec `json:"parameters"`
}

func buildJSON(selected []*action.ActionDescriptor, orderedIDs []string, req BuildRequest) (string, error) {
	out := jsonPrompt{
		DSLGuidance: map[string]string{},
		DSLSchemas:  map[string]*grammar.SxlGrammar{},
	}
	for _, d := range selected {
		out.Actions = append(out.Actions, jsonAction{ID: d.ID, Description: d.Description, Parameters: d.Parameters})
	}
	for _, id := range orderedIDs {
		out.DSLGuidance[id] = resolveGuidance(id, req)
		if req.Grammars != nil {
			if g, ok := req.Grammars.Lookup(id); ok {
				out.DSLSchemas[id] = g
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("prompt: marshal json mode: %w", err)
	}
	return string(data), nil
}
