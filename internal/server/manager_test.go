package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T, handler http.Handler) *Manager {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Addr = ":0" // 随机端口
	m := NewManager(handler, cfg, zap.NewNop())
	return m
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 1<<20, cfg.MaxHeaderBytes)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestManager_ServesOpsEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	m := newTestManager(t, mux)

	require.NoError(t, m.Start())
	t.Cleanup(func() { m.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + m.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestManager_Lifecycle(t *testing.T) {
	m := newTestManager(t, http.NewServeMux())
	assert.True(t, m.IsRunning(), "新建的 manager 还未关闭")

	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())

	// 重复 Start 必须失败
	err := m.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already started")

	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())

	// Shutdown 幂等
	require.NoError(t, m.Shutdown(context.Background()))

	// 已关闭后不允许再启动
	err = m.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestManager_WaitForShutdown_OnServerError(t *testing.T) {
	m := newTestManager(t, http.NewServeMux())
	require.NoError(t, m.Start())

	done := make(chan struct{})
	go func() {
		m.WaitForShutdown()
		close(done)
	}()

	// 模拟 serve 循环异常退出
	m.errCh <- errors.New("listener gone")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForShutdown did not return after server error")
	}
	assert.False(t, m.IsRunning())
}

func TestManager_Errors(t *testing.T) {
	m := newTestManager(t, http.NewServeMux())

	ch := m.Errors()
	require.NotNil(t, ch)

	select {
	case err := <-ch:
		t.Fatalf("unexpected error before start: %v", err)
	default:
	}
}

func TestManager_Addr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":9999"
	m := NewManager(http.NewServeMux(), cfg, zap.NewNop())
	assert.Equal(t, ":9999", m.Addr(), "未启动时返回配置地址")

	m2 := newTestManager(t, http.NewServeMux())
	require.NoError(t, m2.Start())
	t.Cleanup(func() { m2.Shutdown(context.Background()) })
	assert.NotEqual(t, ":0", m2.Addr(), "启动后返回真实监听地址")
}
