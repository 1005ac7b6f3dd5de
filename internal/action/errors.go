package action

import (
	"encoding/json"
	"fmt"
)

// DuplicateActionId is raised by Register when descriptor.ID is already
// present in the registry.
type DuplicateActionId struct {
	ID string
}

func (e *DuplicateActionId) Error() string {
	return fmt.Sprintf("action: duplicate action id %q", e.ID)
}

// UnknownAction is raised by Lookup when no descriptor is registered
// under the requested id.
type UnknownAction struct {
	ID string
}

func (e *UnknownAction) Error() string {
	return fmt.Sprintf("action: unknown action %q", e.ID)
}

// MissingArgument is raised by Bind when a non-fromContext parameter has
// no corresponding key in the step's JSON parameters.
type MissingArgument struct {
	ActionID string
	Param    string
}

func (e *MissingArgument) Error() string {
	return fmt.Sprintf("action: missing argument %q for action %q", e.Param, e.ActionID)
}

// MissingContext is raised by Bind when a fromContext parameter's key is
// absent from the execution context, or holds a value that does not
// match the parameter's typeId.
type MissingContext struct {
	ActionID string
	Param    string
	Key      string
}

func (e *MissingContext) Error() string {
	return fmt.Sprintf("action: missing context key %q for parameter %q of action %q", e.Key, e.Param, e.ActionID)
}

// DeserializationFailed carries every field-level conversion error plus
// the raw JSON that failed to convert, so a host can reproduce it.
type DeserializationFailed struct {
	ActionID    string
	Param       string
	FieldErrors []error
	RawJSON     json.RawMessage
}

func (e *DeserializationFailed) Error() string {
	return fmt.Sprintf("action: failed to deserialize parameter %q of action %q: %v", e.Param, e.ActionID, e.FieldErrors)
}

// DuplicateParamName is raised when an ActionDescriptor declares the same
// parameter name twice.
type DuplicateParamName struct {
	ActionID string
	Param    string
}

func (e *DuplicateParamName) Error() string {
	return fmt.Sprintf("action: duplicate parameter name %q in action %q", e.Param, e.ActionID)
}
