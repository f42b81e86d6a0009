package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// Role 对话角色（wire 层自持类型，与 types.Item 解耦）
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolChoice 取值：auto / none / 指定工具名
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // 工具返回时标识对应调用
}

type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

type ChatRequest struct {
	TraceID     string            `json:"trace_id,omitempty"`
	Model       string            `json:"model"`
	Messages    []Message         `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float32           `json:"temperature,omitempty"`
	TopP        float32           `json:"top_p,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Tools       []ToolSchema      `json:"tools,omitempty"`
	ToolChoice  string            `json:"tool_choice,omitempty"` // auto/none/<tool name>
	Timeout     time.Duration     `json:"timeout,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ChatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason,omitempty"`
	Message      Message `json:"message"`
}

type ChatResponse struct {
	ID        string           `json:"id,omitempty"`
	Provider  string           `json:"provider,omitempty"`
	Model     string           `json:"model"`
	Choices   []ChatChoice     `json:"choices"`
	Usage     types.TokenUsage `json:"usage,omitempty"`
	CreatedAt time.Time        `json:"created_at,omitempty"`
}

// First returns the first choice's message, or an empty message.
func (r *ChatResponse) First() Message {
	if r == nil || len(r.Choices) == 0 {
		return Message{}
	}
	return r.Choices[0].Message
}

type StreamChunk struct {
	ID           string            `json:"id,omitempty"`
	Provider     string            `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	Index        int               `json:"index,omitempty"`
	Delta        Message           `json:"delta"`
	FinishReason string            `json:"finish_reason,omitempty"`
	Usage        *types.TokenUsage `json:"usage,omitempty"` // 最终 chunk 可带 usage
	Err          *types.Error      `json:"error,omitempty"`
}

// HealthStatus 表示 Provider 健康检查结果。
type HealthStatus struct {
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency"`
	ErrorRate float64       `json:"error_rate"`
}

// Provider 定义了统一的 LLM 适配接口。
// 工具调用通过 ChatRequest.Tools 传递，模型在响应中返回 ToolCalls，
// 具体执行由 agent.ToolSet 负责。
type Provider interface {
	// Completion 发起同步聊天请求，返回完整响应
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Stream 发起流式聊天请求，返回增量响应通道
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamChunk, error)

	// HealthCheck 执行轻量级健康检查，返回延迟与可用性信息
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Name 返回 Provider 的唯一标识
	Name() string

	// SupportsNativeFunctionCalling 返回是否支持原生 Function Calling
	SupportsNativeFunctionCalling() bool
}

// FromItems converts dialogue items to wire messages. Item IDs are a session
// concern and are not sent to providers.
func FromItems(items []types.Item) []Message {
	out := make([]Message, 0, len(items))
	for _, it := range items {
		out = append(out, Message{
			Role:       Role(it.Role),
			Content:    it.Content,
			Name:       it.Name,
			ToolCalls:  fromItemToolCalls(it.ToolCalls),
			ToolCallID: it.ToolCallID,
		})
	}
	return out
}

func fromItemToolCalls(calls []types.ToolCall) []ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ToolCall, len(calls))
	for i, tc := range calls {
		out[i] = ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments}
	}
	return out
}

// FromSchemas converts tool schemas to the wire representation.
func FromSchemas(schemas []types.ToolSchema) ([]ToolSchema, error) {
	out := make([]ToolSchema, 0, len(schemas))
	for _, s := range schemas {
		params, err := s.MarshalParameters()
		if err != nil {
			return nil, err
		}
		out = append(out, ToolSchema{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  params,
		})
	}
	return out, nil
}

// ToItem converts a response message into a dialogue item with a fresh ID.
func (m Message) ToItem() types.Item {
	it := types.NewItem(types.Role(m.Role), m.Content)
	it.Name = m.Name
	it.ToolCallID = m.ToolCallID
	if len(m.ToolCalls) > 0 {
		calls := make([]types.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			calls[i] = types.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments}
		}
		it.ToolCalls = calls
	}
	return it
}
