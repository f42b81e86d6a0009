// 配置加载器与默认配置测试。
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- 默认配置测试 ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// 验证服务器默认值
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, float64(100), cfg.Server.RateLimitRPS)
	assert.Equal(t, 200, cfg.Server.RateLimitBurst)
	assert.False(t, cfg.Server.AuthEnabled)

	// 验证坐席默认值
	assert.Equal(t, "llama3.1-8b", cfg.Agent.Model)
	assert.Equal(t, 0.7, cfg.Agent.Temperature)
	assert.Equal(t, 5, cfg.Agent.MaxToolSteps)
	assert.Equal(t, "triage", cfg.Agent.InitialAgent)
	assert.Equal(t, 0, cfg.Agent.TokenBudget)

	// 验证 LLM 默认值
	assert.Equal(t, "cerebras", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.RetryBackoff)

	// 验证存储默认值
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 25, cfg.Store.MaxOpenConns)
	assert.False(t, cfg.Store.Cache.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Store.Cache.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Store.Cache.TTL)

	// 验证语音默认值
	assert.Equal(t, "nova-2", cfg.Speech.Deepgram.Model)
	assert.Equal(t, "eleven_multilingual_v2", cfg.Speech.ElevenLabs.Model)
	assert.Equal(t, 0.015, cfg.Speech.VAD.Threshold)
	assert.Equal(t, 25, cfg.Speech.VAD.HangoverFrames)

	// 验证 Log 默认值
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

// --- Loader 测试 ---

func TestLoader_LoadDefaults(t *testing.T) {
	// 不指定配置文件，应该返回默认值
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "triage", cfg.Agent.InitialAgent)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	// 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s

agent:
  model: "llama3.1-70b"
  temperature: 0.5
  max_tool_steps: 8
  initial_agent: "info"
  token_budget: 6000

llm:
  provider: "openai-compatible"
  base_url: "https://inference.internal/v1"
  timeout: 45s

store:
  driver: "postgres"
  dsn: "host=localhost user=pharmacy dbname=catalog"
  cache:
    enabled: true
    addr: "cache.internal:6379"
    ttl: 10m

speech:
  deepgram:
    model: "nova-2-phonecall"
  vad:
    threshold: 0.02

log:
  level: "debug"
  format: "console"
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	// 加载配置
	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	// 验证 YAML 值覆盖了默认值
	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "llama3.1-70b", cfg.Agent.Model)
	assert.Equal(t, 0.5, cfg.Agent.Temperature)
	assert.Equal(t, 8, cfg.Agent.MaxToolSteps)
	assert.Equal(t, "info", cfg.Agent.InitialAgent)
	assert.Equal(t, 6000, cfg.Agent.TokenBudget)

	assert.Equal(t, "openai-compatible", cfg.LLM.Provider)
	assert.Equal(t, "https://inference.internal/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.True(t, cfg.Store.Cache.Enabled)
	assert.Equal(t, "cache.internal:6379", cfg.Store.Cache.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Store.Cache.TTL)

	assert.Equal(t, "nova-2-phonecall", cfg.Speech.Deepgram.Model)
	assert.Equal(t, 0.02, cfg.Speech.VAD.Threshold)
	// 未覆盖的嵌套字段保留默认值
	assert.Equal(t, 25, cfg.Speech.VAD.HangoverFrames)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	// 设置环境变量
	envVars := map[string]string{
		"PHARMACY_SERVER_HTTP_PORT":      "7777",
		"PHARMACY_AGENT_MODEL":           "llama-3.3-70b",
		"PHARMACY_AGENT_TEMPERATURE":     "0.9",
		"PHARMACY_AGENT_MAX_TOOL_STEPS":  "3",
		"PHARMACY_LLM_API_KEY":           "csk-test",
		"PHARMACY_LLM_TIMEOUT":           "90s",
		"PHARMACY_STORE_CACHE_ENABLED":   "true",
		"PHARMACY_SPEECH_DEEPGRAM_MODEL": "nova-2-medical",
		"PHARMACY_LOG_LEVEL":             "warn",
		"PHARMACY_LOG_OUTPUT_PATHS":      "stdout, /var/log/pharmacy.log",
	}

	for k, v := range envVars {
		os.Setenv(k, v)
	}
	defer func() {
		for k := range envVars {
			os.Unsetenv(k)
		}
	}()

	// 加载配置
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	// 验证环境变量覆盖了默认值
	assert.Equal(t, 7777, cfg.Server.HTTPPort)
	assert.Equal(t, "llama-3.3-70b", cfg.Agent.Model)
	assert.Equal(t, 0.9, cfg.Agent.Temperature)
	assert.Equal(t, 3, cfg.Agent.MaxToolSteps)
	assert.Equal(t, "csk-test", cfg.LLM.APIKey)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Store.Cache.Enabled)
	assert.Equal(t, "nova-2-medical", cfg.Speech.Deepgram.Model)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"stdout", "/var/log/pharmacy.log"}, cfg.Log.OutputPaths)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	// 创建临时配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
agent:
  model: "yaml-model"
  initial_agent: "prescription"
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	// 设置环境变量（应该覆盖 YAML）
	os.Setenv("PHARMACY_SERVER_HTTP_PORT", "9999")
	os.Setenv("PHARMACY_AGENT_MODEL", "env-model")
	defer func() {
		os.Unsetenv("PHARMACY_SERVER_HTTP_PORT")
		os.Unsetenv("PHARMACY_AGENT_MODEL")
	}()

	// 加载配置
	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	// 环境变量应该覆盖 YAML
	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, "env-model", cfg.Agent.Model)
	// YAML 值应该保留（没有被环境变量覆盖）
	assert.Equal(t, "prescription", cfg.Agent.InitialAgent)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	// 设置自定义前缀的环境变量
	os.Setenv("MYAPP_SERVER_HTTP_PORT", "6666")
	os.Setenv("MYAPP_AGENT_MODEL", "custom-prefix-model")
	defer func() {
		os.Unsetenv("MYAPP_SERVER_HTTP_PORT")
		os.Unsetenv("MYAPP_AGENT_MODEL")
	}()

	// 使用自定义前缀加载
	cfg, err := NewLoader().
		WithEnvPrefix("MYAPP").
		Load()
	require.NoError(t, err)

	assert.Equal(t, 6666, cfg.Server.HTTPPort)
	assert.Equal(t, "custom-prefix-model", cfg.Agent.Model)
}

func TestLoader_WithValidator(t *testing.T) {
	// 添加验证器
	validator := func(cfg *Config) error {
		if cfg.Server.HTTPPort < 1024 {
			return assert.AnError
		}
		return nil
	}

	// 设置无效端口
	os.Setenv("PHARMACY_SERVER_HTTP_PORT", "80")
	defer os.Unsetenv("PHARMACY_SERVER_HTTP_PORT")

	// 加载应该失败
	_, err := NewLoader().
		WithValidator(validator).
		Load()
	assert.Error(t, err)
}

func TestLoader_NonExistentFile(t *testing.T) {
	// 指定不存在的文件，应该使用默认值（不报错）
	cfg, err := NewLoader().
		WithConfigPath("/non/existent/path/config.yaml").
		Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// 应该返回默认值
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	// 创建无效的 YAML 文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
server:
  http_port: [invalid
  this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	// 加载应该失败
	_, err = NewLoader().
		WithConfigPath(configPath).
		Load()
	assert.Error(t, err)
}

// --- Config 方法测试 ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid HTTP port (negative)",
			modify: func(c *Config) {
				c.Server.HTTPPort = -1
			},
			wantErr: true,
		},
		{
			name: "invalid HTTP port (too large)",
			modify: func(c *Config) {
				c.Server.HTTPPort = 70000
			},
			wantErr: true,
		},
		{
			name: "auth enabled without jwt secret",
			modify: func(c *Config) {
				c.Server.AuthEnabled = true
			},
			wantErr: true,
		},
		{
			name: "auth enabled with jwt secret",
			modify: func(c *Config) {
				c.Server.AuthEnabled = true
				c.Server.JWTSecret = "s3cret"
			},
			wantErr: false,
		},
		{
			name: "missing model",
			modify: func(c *Config) {
				c.Agent.Model = ""
			},
			wantErr: true,
		},
		{
			name: "invalid max tool steps",
			modify: func(c *Config) {
				c.Agent.MaxToolSteps = 0
			},
			wantErr: true,
		},
		{
			name: "invalid temperature (negative)",
			modify: func(c *Config) {
				c.Agent.Temperature = -0.5
			},
			wantErr: true,
		},
		{
			name: "invalid temperature (too high)",
			modify: func(c *Config) {
				c.Agent.Temperature = 3.0
			},
			wantErr: true,
		},
		{
			name: "missing initial agent",
			modify: func(c *Config) {
				c.Agent.InitialAgent = ""
			},
			wantErr: true,
		},
		{
			name: "unsupported llm provider",
			modify: func(c *Config) {
				c.LLM.Provider = "bedrock"
			},
			wantErr: true,
		},
		{
			name: "unsupported store driver",
			modify: func(c *Config) {
				c.Store.Driver = "cassandra"
			},
			wantErr: true,
		},
		{
			name: "sql driver without dsn",
			modify: func(c *Config) {
				c.Store.Driver = "postgres"
			},
			wantErr: true,
		},
		{
			name: "sql driver with dsn",
			modify: func(c *Config) {
				c.Store.Driver = "sqlite"
				c.Store.DSN = ":memory:"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// --- MustLoad 测试 ---

func TestMustLoad_Success(t *testing.T) {
	// 创建有效配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8080
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	// 不应该 panic
	assert.NotPanics(t, func() {
		cfg := MustLoad(configPath)
		assert.Equal(t, 8080, cfg.Server.HTTPPort)
	})
}

func TestMustLoad_InvalidFile(t *testing.T) {
	// 创建无效配置文件
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	err := os.WriteFile(configPath, []byte("invalid: [yaml"), 0644)
	require.NoError(t, err)

	// 应该 panic
	assert.Panics(t, func() {
		MustLoad(configPath)
	})
}

func TestLoadFromEnv_Function(t *testing.T) {
	os.Setenv("PHARMACY_AGENT_MODEL", "env-only-model")
	defer os.Unsetenv("PHARMACY_AGENT_MODEL")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-only-model", cfg.Agent.Model)
}
