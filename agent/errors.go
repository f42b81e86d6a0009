package agent

import "errors"

var (
	// ErrUnknownAgent 交接目标未注册
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrProviderNotSet LLM Provider 未设置
	ErrProviderNotSet = errors.New("llm provider not set")

	// ErrSessionNotStarted 会话尚未启动（无当前 Agent）
	ErrSessionNotStarted = errors.New("session not started")

	// ErrSessionClosed 会话已关闭
	ErrSessionClosed = errors.New("session closed")

	// ErrToolNotFound 工具未找到
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNotAllowed 工具不在当前 Agent 的白名单内
	ErrToolNotAllowed = errors.New("tool not allowed for agent")

	// ErrDuplicateAgent 重复注册同名 Agent
	ErrDuplicateAgent = errors.New("agent already registered")

	// ErrConfigInvalid 配置无效
	ErrConfigInvalid = errors.New("invalid agent config")
)
