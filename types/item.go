// Package types provides core types shared across the pharmacy agent runtime.
// This package has ZERO dependencies on other packages in this module to avoid
// circular imports. All other packages should import types from here.
package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a dialogue participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a tool invocation request from the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Item is a single entry in an agent's conversation history.
//
// The ID is assigned once at construction and never changes afterwards:
// copying a context, truncating it, or carrying items across an agent
// handoff must preserve it, because handoff merging deduplicates by ID.
type Item struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`

	// Instruction marks the persona-instruction system item injected when an
	// agent is constructed. Context copies can exclude exactly these so one
	// persona's framing never leaks into another persona's history.
	Instruction bool `json:"instruction,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NewItem creates a new dialogue item with a fresh unique ID.
func NewItem(role Role, content string) Item {
	return Item{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewSystemItem creates a new system item.
func NewSystemItem(content string) Item {
	return NewItem(RoleSystem, content)
}

// NewInstructionItem creates the persona-instruction system item.
func NewInstructionItem(content string) Item {
	it := NewItem(RoleSystem, content)
	it.Instruction = true
	return it
}

// NewUserItem creates a new user item.
func NewUserItem(content string) Item {
	return NewItem(RoleUser, content)
}

// NewAssistantItem creates a new assistant item.
func NewAssistantItem(content string) Item {
	return NewItem(RoleAssistant, content)
}

// NewToolItem creates a new tool result item.
func NewToolItem(toolCallID, name, content string) Item {
	it := NewItem(RoleTool, content)
	it.Name = name
	it.ToolCallID = toolCallID
	return it
}

// WithToolCalls adds tool calls to the item.
func (i Item) WithToolCalls(calls []ToolCall) Item {
	i.ToolCalls = calls
	return i
}

// Clone returns a deep copy of the item. The ID is preserved.
func (i Item) Clone() Item {
	out := i
	if len(i.ToolCalls) > 0 {
		out.ToolCalls = make([]ToolCall, len(i.ToolCalls))
		for idx, tc := range i.ToolCalls {
			cp := tc
			if len(tc.Arguments) > 0 {
				cp.Arguments = append(json.RawMessage(nil), tc.Arguments...)
			}
			out.ToolCalls[idx] = cp
		}
	}
	return out
}
