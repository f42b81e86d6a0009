// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
# 概述

包 providers 提供跨模型服务商的通用适配与辅助能力，是具体 Provider
实现的公共基础层。服务商子包（cerebras 等）依赖本包完成请求/响应转换、
错误映射等共享逻辑。

# 核心类型

  - BaseProviderConfig — 所有 Provider 共享的基础配置（APIKey、BaseURL、Model、Timeout）
  - OpenAICompat* 系列 — OpenAI 兼容 API 的通用请求/响应/工具调用结构体
  - ModelInfo — 模型列表端点返回的模型描述

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为语义化的 types.Error（含 Retryable 标记）
  - ConvertMessagesToOpenAI / ConvertToolsToOpenAI — 统一消息与工具格式转换
  - ToLLMChatResponse — OpenAI 兼容响应到 llm.ChatResponse 的转换
  - ChooseModel — 按优先级选择模型（请求 > 默认 > 兜底）
  - BearerTokenHeaders — Bearer Token 标准认证 header 构建

# 支持能力

  - 统一错误语义映射（401/403/404/429/5xx、上下文超长的 400）
  - OpenAI 兼容格式的请求/响应序列化，工具定义携带 JSON Schema 形参
*/
package providers
