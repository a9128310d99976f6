// Package schema contains the data model and contracts shared across storyloom
// packages. Concrete implementations live in their respective packages.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType is the JSON Schema primitive type of a tool input field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldObject  FieldType = "object"
)

// Field describes one input property of a tool.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Enum        []string // optional closed set of string values
	Label       string   // human name used in validation errors; derived from Name when empty
}

// DisplayName returns the label used in "<Field> is required" errors,
// e.g. "character_id" → "Character ID".
func (f Field) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	words := strings.Split(f.Name, "_")
	for i, w := range words {
		if w == "id" {
			words[i] = "ID"
			continue
		}
		if i == 0 && w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// InputSchema is the JSON-schema-like descriptor of a tool's arguments.
type InputSchema struct {
	Required []Field
	Optional []Field
}

// RequiredFields returns the names of all required fields in declaration order.
func (s InputSchema) RequiredFields() []string {
	names := make([]string, 0, len(s.Required))
	for _, f := range s.Required {
		names = append(names, f.Name)
	}
	return names
}

// OptionalFields returns the names of all optional fields in declaration order.
func (s InputSchema) OptionalFields() []string {
	names := make([]string, 0, len(s.Optional))
	for _, f := range s.Optional {
		names = append(names, f.Name)
	}
	return names
}

// FieldTypes maps every declared field name to its type.
func (s InputSchema) FieldTypes() map[string]FieldType {
	out := make(map[string]FieldType, len(s.Required)+len(s.Optional))
	for _, f := range s.Required {
		out[f.Name] = f.Type
	}
	for _, f := range s.Optional {
		out[f.Name] = f.Type
	}
	return out
}

// JSONSchema renders the descriptor as a JSON Schema object:
// {"type":"object","properties":{...},"required":[...]}.
// properties and required are never nil so they serialise as {} and [].
func (s InputSchema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Required)+len(s.Optional))
	for _, f := range append(append([]Field{}, s.Required...), s.Optional...) {
		p := map[string]any{"type": string(f.Type)}
		if f.Description != "" {
			p["description"] = f.Description
		}
		if len(f.Enum) > 0 {
			p["enum"] = f.Enum
		}
		props[f.Name] = p
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   s.RequiredFields(),
	}
}

// ToolDefinition is one entry of the tool catalogue. Immutable once registered.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema InputSchema
}

// ToolResult is the uniform outcome of a tool dispatch. It is the only thing
// the model ever sees about a tool execution.
type ToolResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Succeed builds a successful result.
func Succeed(data map[string]any, message string) ToolResult {
	return ToolResult{Success: true, Data: data, Message: message}
}

// Failf builds a failed result with a formatted error.
func Failf(format string, args ...any) ToolResult {
	return ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// JSON encodes the result as a single JSON value.
func (r ToolResult) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		fallback, _ := json.Marshal(ToolResult{Success: false, Error: fmt.Sprintf("encode result: %v", err)})
		return string(fallback)
	}
	return string(data)
}
