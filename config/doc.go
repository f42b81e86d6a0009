// Copyright 2025 PharmacyAgent Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

// Package config 提供 pharmacy-agent 的配置管理功能。
//
// 包含配置加载、默认值与热重载。
// 支持从 YAML 文件和环境变量加载配置（优先级: 默认值 → 文件 → 环境变量），
// 并提供运行时热重载能力：文件变更后重新加载并校验，
// 校验失败时保留旧配置继续运行。
package config
