package providers

import "time"

// BaseProviderConfig 所有 Provider 共享的基础配置字段。
// 各 Provider 的 Config 嵌入此结构体获得 APIKey、BaseURL、Model、Timeout。
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CerebrasConfig Cerebras Provider 配置
type CerebrasConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// OpenAIConfig OpenAI Provider 配置（本地开发可指向任意兼容端点）
type OpenAIConfig struct {
	BaseProviderConfig `yaml:",inline"`
	Organization       string `json:"organization,omitempty" yaml:"organization,omitempty"`
}
