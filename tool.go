package cinesnap

import (
	"github.com/darkostanimirovic/cinesnap/providers"
)

// ToolBuilder constructs a tool definition with a fluent API.
type ToolBuilder struct {
	def providers.ToolDefinition
}

// NewTool creates a new tool builder.
func NewTool(name string) *ToolBuilder {
	return &ToolBuilder{
		def: providers.ToolDefinition{
			Name: name,
			Parameters: map[string]any{
				"type":       paramTypeObject,
				"properties": map[string]any{},
			},
		},
	}
}

// WithDescription sets the tool description.
func (tb *ToolBuilder) WithDescription(desc string) *ToolBuilder {
	tb.def.Description = desc
	return tb
}

// WithParameter adds a parameter to the tool.
func (tb *ToolBuilder) WithParameter(name string, schema *ParameterSchema) *ToolBuilder {
	props := tb.def.Parameters["properties"].(map[string]any)
	props[name] = schema.ToMap()

	if schema.required {
		required, _ := tb.def.Parameters["required"].([]string)
		tb.def.Parameters["required"] = append(required, name)
	}
	return tb
}

// Build returns the constructed definition.
func (tb *ToolBuilder) Build() providers.ToolDefinition {
	return tb.def
}

// ParameterSchema defines a tool parameter schema.
type ParameterSchema struct {
	paramType   string
	description string
	required    bool
	enum        []string
}

const (
	paramTypeString  = "string"
	paramTypeInteger = "integer"
	paramTypeObject  = "object"
)

// String creates a string parameter schema.
func String() *ParameterSchema {
	return &ParameterSchema{paramType: paramTypeString}
}

// Integer creates an integer parameter schema.
func Integer() *ParameterSchema {
	return &ParameterSchema{paramType: paramTypeInteger}
}

// WithDescription sets the parameter description.
func (ps *ParameterSchema) WithDescription(desc string) *ParameterSchema {
	ps.description = desc
	return ps
}

// Required marks the parameter as required.
func (ps *ParameterSchema) Required() *ParameterSchema {
	ps.required = true
	return ps
}

// WithEnum sets allowed values for the parameter.
func (ps *ParameterSchema) WithEnum(values ...string) *ParameterSchema {
	ps.enum = values
	return ps
}

// ToMap converts the schema to its JSON-schema map form.
func (ps *ParameterSchema) ToMap() map[string]any {
	m := map[string]any{"type": ps.paramType}
	if ps.description != "" {
		m["description"] = ps.description
	}
	if len(ps.enum) > 0 {
		m["enum"] = ps.enum
	}
	return m
}
