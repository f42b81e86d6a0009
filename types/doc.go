// Copyright (c) PharmacyAgent Authors.
// Licensed under the MIT License.

/*
Package types 提供药房语音助手运行时的全局共享类型定义。

# 概述

types 是本模块最底层的公共包，不依赖任何内部包，为 agent、pharmacy、llm、
speech、store 等上层模块提供统一的类型契约。所有跨包共享的接口、结构体、
枚举和错误码均定义于此，以避免循环依赖。

# 核心接口与类型

  - Item              — 对话条目（稳定唯一 ID、Role、Content、ToolCalls）
  - Role              — 对话角色枚举（system / user / assistant / tool）
  - ToolCall          — 模型发起的工具调用请求
  - ToolSchema        — 工具定义（name + description + JSON Schema parameters）
  - ToolResult        — 工具执行结果（可转换为 tool 角色 Item）
  - Error / ErrorCode — 结构化错误体系，含 Retryable、Provider 标记
  - JSONSchema        — 工具参数 JSON Schema 定义与构建器
  - Summarizer        — 会话共享事实的确定性快照接口
  - TokenUsage        — 单次模型调用的 Token 消耗统计

# 主要能力

  - Context 传播：WithTraceID / WithSessionID / WithTurnID / WithAgentName
  - 错误工具链：IsRetryable / GetErrorCode / IsCode
  - Item 构造：NewSystemItem / NewUserItem / NewAssistantItem / NewToolItem /
    NewInstructionItem（人格指令标记，交接复制时据此排除）

Item 的 ID 在构造时生成且终生不变：上下文复制、截断与跨 Agent 交接合并
都必须保留它，交接合并正是按 ID 去重的。
*/
package types
