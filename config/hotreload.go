// 配置热重载。
//
// 监听配置文件变更，重新加载并校验，校验通过后原子替换当前配置并通知订阅者。
// 校验失败时保留旧配置继续运行。
package config

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// --- 热重载类型定义 ---

// ReloadCallback 重新加载配置后调用
type ReloadCallback func(oldConfig, newConfig *Config)

// Reloader 管理配置热重载
type Reloader struct {
	mu sync.RWMutex

	// 当前配置
	config     *Config
	configPath string
	envPrefix  string

	// 文件观察者
	watcher     *FileWatcher
	watcherOpts []WatcherOption

	// 回调
	reloadCallbacks []ReloadCallback

	// 记录器
	logger *zap.Logger

	// 运行状态
	running bool
}

// ReloaderOption configures the Reloader
type ReloaderOption func(*Reloader)

// WithReloaderLogger sets the logger for the reloader
func WithReloaderLogger(logger *zap.Logger) ReloaderOption {
	return func(r *Reloader) {
		r.logger = logger
	}
}

// WithReloaderEnvPrefix sets the env prefix used on each reload
func WithReloaderEnvPrefix(prefix string) ReloaderOption {
	return func(r *Reloader) {
		r.envPrefix = prefix
	}
}

// WithReloaderWatcherOptions forwards options to the underlying file watcher
func WithReloaderWatcherOptions(opts ...WatcherOption) ReloaderOption {
	return func(r *Reloader) {
		r.watcherOpts = append(r.watcherOpts, opts...)
	}
}

// --- 热重载实现 ---

// NewReloader creates a reloader, performing the initial load and validation
func NewReloader(configPath string, opts ...ReloaderOption) (*Reloader, error) {
	r := &Reloader{
		configPath: configPath,
		envPrefix:  "PHARMACY",
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	cfg, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("initial config load: %w", err)
	}
	r.config = cfg

	watcherOpts := append([]WatcherOption{WithWatcherLogger(r.logger)}, r.watcherOpts...)
	watcher, err := NewFileWatcher(configPath, watcherOpts...)
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	r.watcher = watcher
	watcher.OnChange(r.handleFileEvent)

	return r, nil
}

// Current returns the currently active configuration
func (r *Reloader) Current() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// OnReload registers a callback invoked after each successful reload
func (r *Reloader) OnReload(cb ReloadCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloadCallbacks = append(r.reloadCallbacks, cb)
}

// Start begins watching the config file for changes
func (r *Reloader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("reloader already running")
	}
	r.running = true
	r.mu.Unlock()

	if err := r.watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	r.logger.Info("Config reloader started", zap.String("path", r.configPath))
	return nil
}

// Stop stops watching for changes
func (r *Reloader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}
	r.running = false

	return r.watcher.Stop()
}

// load reads the file, applies env overrides and validates the result
func (r *Reloader) load() (*Config, error) {
	cfg, err := NewLoader().
		WithConfigPath(r.configPath).
		WithEnvPrefix(r.envPrefix).
		Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// handleFileEvent reacts to a change in the watched config file
func (r *Reloader) handleFileEvent(event FileEvent) {
	if event.Op == FileOpRemove {
		// 文件被删除时保留当前配置
		r.logger.Warn("Config file removed, keeping current config",
			zap.String("path", event.Path))
		return
	}

	newCfg, err := r.load()
	if err != nil {
		// 加载或校验失败，保留旧配置
		r.logger.Error("Config reload failed, keeping current config",
			zap.String("path", event.Path),
			zap.Error(err))
		return
	}

	r.mu.Lock()
	oldCfg := r.config
	r.config = newCfg
	callbacks := make([]ReloadCallback, len(r.reloadCallbacks))
	copy(callbacks, r.reloadCallbacks)
	r.mu.Unlock()

	r.logger.Info("Config reloaded",
		zap.String("path", event.Path),
		zap.String("op", event.Op.String()))

	for _, cb := range callbacks {
		cb(oldCfg, newCfg)
	}
}
