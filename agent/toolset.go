package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// ToolOutput is what a tool hands back to the dispatch loop.
//
// TransferTo is the explicit handoff signal: a tool never swaps the current
// agent itself, it asks the session's dispatch loop to do it. Text is always
// the user-facing (and model-facing) result string.
type ToolOutput struct {
	Text       string
	TransferTo string
}

// ToolFunc executes one tool action. Arguments arrive as the raw JSON the
// model produced; implementations unmarshal what they need.
type ToolFunc func(ctx context.Context, args json.RawMessage) (ToolOutput, error)

// Tool pairs a schema with its handler.
type Tool struct {
	Schema  types.ToolSchema
	Handler ToolFunc
}

// ToolSet is the session-wide tool registry. Agents reference tools by name
// through their allowed list; the set holds every tool any persona can use.
type ToolSet struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolSet creates an empty registry.
func NewToolSet() *ToolSet {
	return &ToolSet{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering a duplicate name is an error.
func (ts *ToolSet) Register(t Tool) error {
	if t.Schema.Name == "" {
		return fmt.Errorf("tool schema name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Schema.Name)
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if _, exists := ts.tools[t.Schema.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Schema.Name)
	}
	ts.tools[t.Schema.Name] = t
	return nil
}

// MustRegister registers a tool and panics on error. For wiring code that
// runs at startup.
func (ts *ToolSet) MustRegister(t Tool) {
	if err := ts.Register(t); err != nil {
		panic(err)
	}
}

// Get returns the named tool.
func (ts *ToolSet) Get(name string) (Tool, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.tools[name]
	return t, ok
}

// Names returns the registered tool names.
func (ts *ToolSet) Names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	names := make([]string, 0, len(ts.tools))
	for name := range ts.tools {
		names = append(names, name)
	}
	return names
}

// Schemas resolves an agent's allowed tool names into schemas, skipping names
// with no registered tool.
func (ts *ToolSet) Schemas(names []string) []types.ToolSchema {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]types.ToolSchema, 0, len(names))
	for _, name := range names {
		if t, ok := ts.tools[name]; ok {
			out = append(out, t.Schema)
		}
	}
	return out
}

// Execute runs one tool call and returns its output plus a result record for
// the dialogue history. Unknown tools and handler failures are reported in
// the result's Error field rather than as a Go error, so the model can see
// the failure and recover within the turn.
func (ts *ToolSet) Execute(ctx context.Context, call types.ToolCall) (ToolOutput, types.ToolResult) {
	start := time.Now()
	result := types.ToolResult{ToolCallID: call.ID, Name: call.Name}

	tool, ok := ts.Get(call.Name)
	if !ok {
		result.Error = fmt.Sprintf("%v: %s", ErrToolNotFound, call.Name)
		result.Duration = time.Since(start)
		return ToolOutput{}, result
	}

	out, err := tool.Handler(ctx, call.Arguments)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return ToolOutput{}, result
	}
	result.Content = out.Text
	return out, result
}
