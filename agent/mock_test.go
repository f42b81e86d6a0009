package agent

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// mockProvider is a hand-written llm.Provider that replays queued responses
// in order and records every request it sees. Shared by the test files in
// this package.
type mockProvider struct {
	mu       sync.Mutex
	queue    []mockStep
	requests []*llm.ChatRequest
}

type mockStep struct {
	resp *llm.ChatResponse
	err  error
}

func newMockProvider() *mockProvider { return &mockProvider{} }

func (m *mockProvider) enqueueText(content string) *mockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockStep{resp: textResponse(content)})
	return m
}

func (m *mockProvider) enqueueToolCall(callID, name, args string) *mockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockStep{resp: toolCallResponse(callID, name, args)})
	return m
}

func (m *mockProvider) enqueueErr(err error) *mockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockStep{err: err})
	return m
}

func (m *mockProvider) enqueueResp(resp *llm.ChatResponse) *mockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockStep{resp: resp})
	return m
}

func (m *mockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.queue) == 0 {
		return textResponse("ok"), nil
	}
	step := m.queue[0]
	m.queue = m.queue[1:]
	return step.resp, step.err
}

func (m *mockProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk)
	close(ch)
	return ch, nil
}

func (m *mockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) SupportsNativeFunctionCalling() bool { return true }

func (m *mockProvider) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockProvider) lastRequest() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func textResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "mock-model",
		Choices: []llm.ChatChoice{{
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
			FinishReason: "stop",
		}},
		Usage: types.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func toolCallResponse(callID, name, args string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Model: "mock-model",
		Choices: []llm.ChatChoice{{
			Message: llm.Message{
				Role:      llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{{ID: callID, Name: name, Arguments: json.RawMessage(args)}},
			},
			FinishReason: "tool_calls",
		}},
		Usage: types.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

// stubRecord is a minimal shared fact record.
type stubRecord struct{ summary string }

func (r *stubRecord) Summarize() string { return r.summary }

func newTestAgent(t *testing.T, name string, tools ...string) *Agent {
	t.Helper()
	a, err := New(Config{
		Name:         name,
		Instructions: "You are the " + name + " assistant for tests.",
		Tools:        tools,
		Voice:        "voice-" + name,
	})
	require.NoError(t, err)
	return a
}

func newTestSession(t *testing.T, provider llm.Provider, agents ...*Agent) *Session {
	t.Helper()
	s, err := NewSession(SessionConfig{
		UserData: &stubRecord{summary: "customer_name: unknown"},
		Provider: provider,
		Tools:    NewToolSet(),
		Model:    "mock-model",
	})
	require.NoError(t, err)
	require.NoError(t, s.RegisterAgents(agents...))
	return s
}

// echoTool registers a plain data tool that returns fixed text.
func echoTool(t *testing.T, s *Session, name, reply string) {
	t.Helper()
	err := s.tools.Register(Tool{
		Schema:  types.ToolSchema{Name: name, Description: "test tool"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			return ToolOutput{Text: reply}, nil
		},
	})
	require.NoError(t, err)
}

// transferTool registers a tool that asks for a handoff to target.
func transferTool(t *testing.T, s *Session, name, target string) {
	t.Helper()
	err := s.tools.Register(Tool{
		Schema:  types.ToolSchema{Name: name, Description: "transfer tool"},
		Handler: func(ctx context.Context, args json.RawMessage) (ToolOutput, error) {
			return ToolOutput{Text: "Transferring to " + target + ".", TransferTo: target}, nil
		},
	})
	require.NoError(t, err)
}
