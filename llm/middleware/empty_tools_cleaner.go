package middleware

import (
	"context"

	llmpkg "github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
)

// EmptyToolsCleaner 空工具列表清理器
// 当请求的 Tools 为空时清除 ToolChoice 字段。
// OpenAI 兼容 API 不允许在没有 tools 时带 tool_choice，
// 而入场协议恰好发送 tool_choice=none 且无工具的请求。
type EmptyToolsCleaner struct{}

// NewEmptyToolsCleaner 创建空工具清理器
func NewEmptyToolsCleaner() *EmptyToolsCleaner {
	return &EmptyToolsCleaner{}
}

// Name 返回改写器名称
func (r *EmptyToolsCleaner) Name() string {
	return "empty_tools_cleaner"
}

// Rewrite 执行改写
func (r *EmptyToolsCleaner) Rewrite(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatRequest, error) {
	if req == nil {
		return req, nil
	}

	if len(req.Tools) == 0 {
		req.ToolChoice = ""
	}

	return req, nil
}
