package types

import (
	"encoding/json"
	"time"
)

// ToolSchema defines a tool's interface for model function calling.
type ToolSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  *JSONSchema `json:"parameters,omitempty"`
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	ToolCallID string        `json:"tool_call_id"`
	Name       string        `json:"name"`
	Content    string        `json:"content"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ToItem converts the result to a tool-role dialogue item.
func (tr ToolResult) ToItem() Item {
	content := tr.Content
	if tr.Error != "" {
		content = "Error: " + tr.Error
	}
	return NewToolItem(tr.ToolCallID, tr.Name, content)
}

// IsError returns true if the tool execution failed.
func (tr ToolResult) IsError() bool {
	return tr.Error != ""
}

// MarshalParameters serializes the schema parameters, returning an empty
// object schema for tools that take no arguments.
func (ts ToolSchema) MarshalParameters() (json.RawMessage, error) {
	if ts.Parameters == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`), nil
	}
	return json.Marshal(ts.Parameters)
}
