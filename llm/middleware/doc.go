// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
包 middleware 提供 LLM 请求处理的中间件链机制，在请求发送到
上游模型服务之前和响应返回之后插入可组合的横切逻辑。

# 核心接口

  - Handler：func(ctx, *ChatRequest) (*ChatResponse, error)，
    表示一个请求处理函数。
  - Middleware：func(Handler) Handler，表示一个中间件装饰器。
  - Chain：中间件链，Use / Then 组合与执行。
  - RequestRewriter / RewriterChain：请求发送前的参数清理与转换。
  - MetricsCollector / BlockingRateLimiter：中间件依赖的辅助接口。

# 主要能力

  - 日志记录：LoggingMiddleware 记录请求模型、耗时与 Token 用量。
  - 超时控制：TimeoutMiddleware 为请求添加 context 超时。
  - 自动重试：RetryMiddleware 按线性退避重试可重试错误。
  - 速率限制：RateLimitMiddleware 基于阻塞式限流器等待，
    *rate.Limiter 可直接使用。
  - 指标采集：MetricsMiddleware 收集请求耗时与 Token 统计。
  - Panic 恢复：RecoveryMiddleware 捕获 panic 并转为错误。
  - 请求改写：EmptyToolsCleaner 在无工具时清除 tool_choice，
    入场问候请求依赖此行为。
  - Provider 包装：WrapProvider 将中间件链套在 Completion 上。
*/
package middleware
