// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
HTTP、LLM、会话、回合与坐席交接五大维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离，
支持多维度 label 分组，便于 Grafana 等工具进行可视化与告警。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 指标，按业务域分组管理。其 RecordRequest/RecordTokens
    方法满足 llm/middleware 的 MetricsCollector 契约，可直接注入
    供应商中间件链。

# 主要能力

  - HTTP 指标：请求总数与耗时，按 method/path/status 分组，
    状态码归类为 2xx/3xx/4xx/5xx。
  - LLM 指标：请求总数、请求耗时、Token 用量，按 model 分组。
  - 会话指标：开始/结束计数、活跃会话 Gauge、会话时长。
  - 回合指标：回合计数与耗时（按坐席分组）、单回合工具调用数分布。
  - 交接指标：坐席间转接计数，按 from/to 分组。
*/
package metrics
