// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
# 概述

包 cerebras 提供 Cerebras 推理服务的 Provider 适配实现。Cerebras 使用
OpenAI 兼容的 API 格式，因此本包通过嵌入 openaicompat.Provider 复用
HTTP 处理、SSE 解析、消息转换等通用逻辑，仅定制差异部分。

# 定制行为

  - 默认 BaseURL: https://api.cerebras.ai
  - 默认兜底模型: llama3.1-8b
  - Endpoint: /v1/chat/completions（openaicompat 默认值）

# 支持能力

  - Chat Completion（同步，委托 openaicompat）
  - 流式输出（SSE，委托 openaicompat）
  - 原生 Function Calling / Tool Use
  - 健康检查、模型列表（委托 openaicompat）
*/
package cerebras
