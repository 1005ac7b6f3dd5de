package action

import (
	"encoding/json"
	"fmt"
)

type stringHandler struct{}

func (stringHandler) TypeID() string { return "string" }
func (stringHandler) FromJSON(raw json.RawMessage) (interface{}, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected JSON string: %w", err)
	}
	return s, nil
}

type numberHandler struct{}

func (numberHandler) TypeID() string { return "number" }
func (numberHandler) FromJSON(raw json.RawMessage) (interface{}, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("expected JSON number: %w", err)
	}
	return f, nil
}

type booleanHandler struct{}

func (booleanHandler) TypeID() string { return "boolean" }
func (booleanHandler) FromJSON(raw json.RawMessage) (interface{}, error) {
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("expected JSON boolean: %w", err)
	}
	return v, nil
}

type anyHandler struct{}

func (anyHandler) TypeID() string { return "any" }
func (anyHandler) FromJSON(raw json.RawMessage) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

type stringListHandler struct{}

func (stringListHandler) TypeID() string { return "stringList" }
func (stringListHandler) FromJSON(raw json.RawMessage) (interface{}, error) {
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("expected JSON array of strings: %w", err)
	}
	return v, nil
}

func builtinHandlers() []TypeHandler {
	return []TypeHandler{
		stringHandler{},
		numberHandler{},
		booleanHandler{},
		anyHandler{},
		stringListHandler{},
	}
}
