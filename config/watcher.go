// 配置文件变更监听器。
//
// 基于轮询的跨平台实现，检测到修改后经防抖触发回调。
package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// --- 文件监听器类型定义 ---

// FileWatcher watches a configuration file for changes
type FileWatcher struct {
	mu sync.RWMutex

	// 配置
	path          string
	pollInterval  time.Duration
	debounceDelay time.Duration

	// 状态
	running   bool
	stopChan  chan struct{}
	eventChan chan FileEvent

	// 回调
	callbacks []func(event FileEvent)

	// 记录器
	logger *zap.Logger

	// 轮询状态
	lastModTime time.Time
	tracked     bool
}

// FileEvent represents a file change event
type FileEvent struct {
	// Path 是改变的文件路径
	Path string `json:"path"`

	// Op 是操作类型
	Op FileOp `json:"op"`

	// Timestamp 是事件发生的时间
	Timestamp time.Time `json:"timestamp"`
}

// FileOp represents file operation types
type FileOp int

const (
	// FileOpCreate 表示文件已创建
	FileOpCreate FileOp = iota
	// FileOpWrite 指示文件已被修改
	FileOpWrite
	// FileOpRemove 表示文件已被删除
	FileOpRemove
)

// String returns the string representation of FileOp
func (op FileOp) String() string {
	switch op {
	case FileOpCreate:
		return "CREATE"
	case FileOpWrite:
		return "WRITE"
	case FileOpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// --- 文件监听器选项 ---

// WatcherOption configures the FileWatcher
type WatcherOption func(*FileWatcher)

// WithPollInterval sets how often the file is checked for modifications
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *FileWatcher) {
		w.pollInterval = d
	}
}

// WithDebounceDelay sets the debounce delay for file events
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(w *FileWatcher) {
		w.debounceDelay = d
	}
}

// WithWatcherLogger sets the logger for the watcher
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *FileWatcher) {
		w.logger = logger
	}
}

// --- 文件监听器实现 ---

// NewFileWatcher creates a new file watcher for the given path
func NewFileWatcher(path string, opts ...WatcherOption) (*FileWatcher, error) {
	w := &FileWatcher{
		path:          path,
		pollInterval:  1 * time.Second,
		debounceDelay: 100 * time.Millisecond,
		stopChan:      make(chan struct{}),
		eventChan:     make(chan FileEvent, 16),
		callbacks:     make([]func(FileEvent), 0),
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	// 验证路径是否存在
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			w.logger.Warn("Config file does not exist, will watch for creation",
				zap.String("path", path))
		} else {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}
	}

	return w, nil
}

// OnChange registers a callback for file change events
func (w *FileWatcher) OnChange(callback func(FileEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching for file changes
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true

	// 初始化上次修改时间
	if info, err := os.Stat(w.path); err == nil {
		w.lastModTime = info.ModTime()
		w.tracked = true
	}
	w.mu.Unlock()

	// 开始轮询 goroutine（跨平台）
	go w.pollLoop(ctx)

	// 启动事件调度程序
	go w.dispatchLoop(ctx)

	w.logger.Info("File watcher started",
		zap.String("path", w.path),
		zap.Duration("poll_interval", w.pollInterval),
		zap.Duration("debounce_delay", w.debounceDelay))

	return nil
}

// Stop stops the file watcher
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	w.running = false

	w.logger.Info("File watcher stopped")
	return nil
}

// pollLoop polls the file for changes
func (w *FileWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.checkFile()
		}
	}
}

// checkFile checks the watched file for modifications
func (w *FileWatcher) checkFile() {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) && w.tracked {
			// 文件之前被跟踪，现已删除
			w.tracked = false
			w.emit(FileOpRemove)
		}
		return
	}

	switch {
	case !w.tracked:
		// 新文件已创建
		w.lastModTime = info.ModTime()
		w.tracked = true
		w.emit(FileOpCreate)
	case info.ModTime().After(w.lastModTime):
		// 文件已修改
		w.lastModTime = info.ModTime()
		w.emit(FileOpWrite)
	}
}

// emit queues an event without blocking the poll loop
func (w *FileWatcher) emit(op FileOp) {
	event := FileEvent{
		Path:      w.path,
		Op:        op,
		Timestamp: time.Now(),
	}
	select {
	case w.eventChan <- event:
	default:
		w.logger.Warn("Event channel full, dropping event",
			zap.String("op", op.String()))
	}
}

// dispatchLoop dispatches events to callbacks with debouncing
func (w *FileWatcher) dispatchLoop(ctx context.Context) {
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event := <-w.eventChan:
			// 覆盖先前的待处理事件
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			evt := event
			debounceTimer = time.AfterFunc(w.debounceDelay, func() {
				w.dispatch(evt)
			})
		}
	}
}

// dispatch delivers one event to all registered callbacks
func (w *FileWatcher) dispatch(event FileEvent) {
	w.mu.RLock()
	callbacks := make([]func(FileEvent), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	w.logger.Debug("Dispatching file event",
		zap.String("path", event.Path),
		zap.String("op", event.Op.String()))

	for _, cb := range callbacks {
		cb(event)
	}
}

// Path returns the watched path
func (w *FileWatcher) Path() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.path
}

// IsRunning returns whether the watcher is running
func (w *FileWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
