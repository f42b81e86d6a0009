// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

// Package tokenizer 提供统一的 Token 计数接口，
// 支持 tiktoken 精确计数与 CJK 估算器，用于会话请求的 Token 预算裁剪。
//
// # 概述
//
// 所有实现都满足 types.TokenCounter, 可直接注入 agent.SessionConfig.
// RegisterDefaultTokenizers 注册 GPT 与 Llama 系模型;
// GetTokenizerOrEstimator 对未注册模型回退到字符估算。
package tokenizer
