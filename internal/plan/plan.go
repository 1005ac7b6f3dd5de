// Package plan defines the wire-format Plan produced by an LLM: a
// human-readable message plus an ordered list of steps referencing
// actions by id with JSON parameters.
package plan

import "encoding/json"

// PlanStep references a registered action by id, carrying its JSON
// parameter tree and a human-readable description for logging/prompts.
// StepID and DependsOn are optional: an LLM may author explicit step
// ids and dependencies directly in the plan; a resolver that omits them
// falls back to position-derived ids ("step-<index>") and pure
// context-flow-derived edges.
type PlanStep struct {
	ActionID    string          `json:"actionId"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
	StepID      string          `json:"stepId,omitempty"`
	DependsOn   []string        `json:"dependsOn,omitempty"`
}

// Plan is the top-level wire message: a summary plus an ordered list of
// steps.
type Plan struct {
	Message string     `json:"message"`
	Steps   []PlanStep `json:"steps"`
}

// Marshal renders p as pretty-printed JSON with two-space indentation.
func Marshal(p *Plan) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Unmarshal parses a wire-format plan document.
func Unmarshal(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
