package cinesnap

import (
	"testing"
)

const (
	testToolName = "test_tool"
	typeString   = "string"
)

func TestNewTool(t *testing.T) {
	tool := NewTool(testToolName).Build()

	if tool.Name != testToolName {
		t.Errorf("expected name test_tool, got %s", tool.Name)
	}
	if tool.Description != "" {
		t.Errorf("expected empty description, got %s", tool.Description)
	}
	if tool.Parameters["type"] != "object" {
		t.Errorf("expected object parameters, got %v", tool.Parameters["type"])
	}
}

func TestToolBuilder_WithParameter_String(t *testing.T) {
	tool := NewTool(testToolName).
		WithParameter("query", String().Required().WithDescription("Search text")).
		Build()

	props := tool.Parameters["properties"].(map[string]any)
	query := props["query"].(map[string]any)

	if query["type"] != typeString {
		t.Errorf("expected type string, got %v", query["type"])
	}
	if query["description"] != "Search text" {
		t.Errorf("expected description 'Search text', got %v", query["description"])
	}

	required := tool.Parameters["required"].([]string)
	if len(required) != 1 || required[0] != "query" {
		t.Errorf("expected required [query], got %v", required)
	}
}

func TestToolBuilder_WithParameter_Optional(t *testing.T) {
	tool := NewTool(testToolName).
		WithParameter("page", Integer()).
		Build()

	if _, ok := tool.Parameters["required"]; ok {
		t.Error("expected no required list for optional parameters")
	}
	props := tool.Parameters["properties"].(map[string]any)
	if props["page"].(map[string]any)["type"] != "integer" {
		t.Errorf("expected integer page, got %v", props["page"])
	}
}

func TestParameterSchema_WithEnum(t *testing.T) {
	m := String().WithEnum("a", "b").ToMap()

	enum, ok := m["enum"].([]string)
	if !ok || len(enum) != 2 || enum[0] != "a" || enum[1] != "b" {
		t.Errorf("expected enum [a b], got %v", m["enum"])
	}
}

func TestParameterSchema_ToMapOmitsEmptyDescription(t *testing.T) {
	m := Integer().ToMap()
	if _, ok := m["description"]; ok {
		t.Errorf("expected no description key, got %v", m)
	}
}
