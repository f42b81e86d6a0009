package agent

import (
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// ChatContext is the ordered dialogue history owned by one agent.
//
// Items are kept in chronological order. Copy and Truncate are pure and
// return a new context; Append, AppendSystemMessage, and MergeNew mutate the
// receiver. Item IDs are never rewritten by any operation here, which is what
// makes cross-agent merge deduplication work.
type ChatContext struct {
	items []types.Item
}

// NewChatContext creates a context holding the given items.
func NewChatContext(items ...types.Item) *ChatContext {
	c := &ChatContext{}
	c.Append(items...)
	return c
}

// Len returns the number of items.
func (c *ChatContext) Len() int {
	return len(c.items)
}

// Items returns a snapshot of the items. Mutating the returned slice does not
// affect the context.
func (c *ChatContext) Items() []types.Item {
	out := make([]types.Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

// Append adds items to the end of the context.
func (c *ChatContext) Append(items ...types.Item) {
	for _, it := range items {
		c.items = append(c.items, it.Clone())
	}
}

// AppendSystemMessage appends a plain (non-instruction) system item.
func (c *ChatContext) AppendSystemMessage(text string) types.Item {
	it := types.NewSystemItem(text)
	c.items = append(c.items, it)
	return it
}

// Copy returns a deep, independent copy of the context. With
// excludeInstructions set, persona-instruction system items are dropped so
// that merging this history into another agent's context does not carry one
// persona's framing into the next. Other system items survive the copy.
func (c *ChatContext) Copy(excludeInstructions bool) *ChatContext {
	out := &ChatContext{items: make([]types.Item, 0, len(c.items))}
	for _, it := range c.items {
		if excludeInstructions && it.Instruction {
			continue
		}
		out.items = append(out.items, it.Clone())
	}
	return out
}

// Truncate returns a new context keeping only the most recent maxItems items,
// order preserved. maxItems <= 0 yields an empty context.
func (c *ChatContext) Truncate(maxItems int) *ChatContext {
	if maxItems <= 0 {
		return &ChatContext{}
	}
	start := 0
	if len(c.items) > maxItems {
		start = len(c.items) - maxItems
	}
	out := &ChatContext{items: make([]types.Item, 0, len(c.items)-start)}
	for _, it := range c.items[start:] {
		out.items = append(out.items, it.Clone())
	}
	return out
}

// ContainsID reports whether an item with the given ID is present.
func (c *ChatContext) ContainsID(id string) bool {
	for _, it := range c.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// MergeNew appends, in order, every item whose ID is not already present.
// Items both agents already share (added before an earlier handoff) are
// skipped. Returns the number of items appended.
func (c *ChatContext) MergeNew(items []types.Item) int {
	seen := make(map[string]struct{}, len(c.items))
	for _, it := range c.items {
		seen[it.ID] = struct{}{}
	}
	appended := 0
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		c.items = append(c.items, it.Clone())
		appended++
	}
	return appended
}

// HasDuplicateIDs reports whether any two items share an ID. A true result is
// a programming defect in the caller, not a recoverable condition.
func (c *ChatContext) HasDuplicateIDs() bool {
	seen := make(map[string]struct{}, len(c.items))
	for _, it := range c.items {
		if _, ok := seen[it.ID]; ok {
			return true
		}
		seen[it.ID] = struct{}{}
	}
	return false
}
