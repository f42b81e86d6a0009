package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/config"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/internal/metrics"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/internal/server"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/internal/telemetry"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	llmmiddleware "github.com/sarathfrancis90/livekit-pharmacy-agent/llm/middleware"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/providers"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/providers/cerebras"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm/providers/openaicompat"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/store"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 pharmacy-agent 的运维服务：健康检查、Prometheus 指标、版本信息、
// 配置热更新。会话本身由接入的语音房间驱动（console 子命令提供本地驱动）。
type Server struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger

	httpManager *server.Manager
	collector   *metrics.Collector
	otel        *telemetry.Providers
	reloader    *config.Reloader
	store       store.Store
}

// NewServer 创建新的服务器实例
func NewServer(cfg *config.Config, configPath string, logger *zap.Logger) *Server {
	return &Server{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Run 启动所有组件并阻塞到收到退出信号
func (s *Server) Run() error {
	// 1. 指标收集器
	s.collector = metrics.NewCollector("pharmacy_agent", s.logger)

	// 2. OpenTelemetry
	otelProviders, err := telemetry.Init(s.cfg.Telemetry, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.otel = otelProviders

	// 3. 药房目录存储
	st, err := buildStore(s.cfg.Store, s.logger)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	s.store = st

	// 4. 配置热更新
	if s.configPath != "" {
		if err := s.startReloader(); err != nil {
			s.logger.Warn("hot reload disabled", zap.Error(err))
		}
	}

	// 5. 运维 HTTP 服务
	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	s.logger.Info("All components started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.String("store_driver", s.cfg.Store.Driver),
		zap.Bool("hot_reload_enabled", s.reloader != nil),
	)

	return s.wait()
}

// startReloader 启动配置文件监听与热加载
func (s *Server) startReloader() error {
	reloader, err := config.NewReloader(s.configPath, config.WithReloaderLogger(s.logger))
	if err != nil {
		return err
	}

	reloader.OnReload(func(oldCfg, newCfg *config.Config) {
		s.logger.Info("Configuration reloaded")
		s.cfg = newCfg
	})

	if err := reloader.Start(context.Background()); err != nil {
		return err
	}

	s.reloader = reloader
	return nil
}

// =============================================================================
// 🌐 运维 HTTP 服务
// =============================================================================

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/version", s.handleVersion)
	mux.Handle("/metrics", promhttp.Handler())

	skipAuthPaths := []string{"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics"}

	chain := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.collector),
		RateLimiter(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst),
	}
	if s.cfg.Server.AuthEnabled {
		chain = append(chain, BearerAuth(s.cfg.Server.JWTSecret, skipAuthPaths, s.logger))
	}
	handler := Chain(mux, chain...)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20, // 1 MB
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady 检查后端依赖是否可达
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// =============================================================================
// 🛑 等待与关闭
// =============================================================================

// wait 阻塞到退出信号或服务器错误，然后优雅关闭
func (s *Server) wait() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case err := <-s.httpManager.Errors():
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			s.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	err := g.Wait()
	s.shutdown()
	return err
}

func (s *Server) shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if s.reloader != nil {
		if err := s.reloader.Stop(); err != nil {
			s.logger.Error("Reloader shutdown error", zap.Error(err))
		}
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Store shutdown error", zap.Error(err))
		}
	}

	if s.otel != nil {
		if err := s.otel.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}

// =============================================================================
// 🔧 依赖装配
// =============================================================================

// buildStore 按配置装配药房目录存储：memory 或 GORM 后端，外加可选的 Redis
// 读穿缓存。memory 后端自动写入演示数据。
func buildStore(cfg config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	var st store.Store

	switch cfg.Driver {
	case "", "memory":
		mem := store.NewMemory()
		if err := store.Seed(context.Background(), mem); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		st = mem
	case "postgres", "mysql", "sqlite":
		g, err := store.NewGorm(store.GormConfig{
			Driver:          cfg.Driver,
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
		st = g
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}

	if cfg.Cache.Enabled {
		cached, err := store.NewCache(store.CacheConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
			Logger:   logger,
		}, st)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		st = cached
	}

	return st, nil
}

// buildProvider 按配置装配推理供应商，并套上日志/超时/重试/指标中间件链。
func buildProvider(cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) (llm.Provider, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm api key not configured")
	}

	base := providers.BaseProviderConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.Agent.Model,
		Timeout: cfg.LLM.Timeout,
	}

	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "", "cerebras":
		provider = cerebras.NewCerebrasProvider(providers.CerebrasConfig{BaseProviderConfig: base}, logger)
	case "openai-compatible":
		provider = openaicompat.New(openaicompat.Config{
			ProviderName: "openai-compatible",
			APIKey:       base.APIKey,
			BaseURL:      base.BaseURL,
			DefaultModel: base.Model,
			Timeout:      base.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}

	chain := llmmiddleware.NewChain(
		llmmiddleware.RecoveryMiddleware(func(v any) {
			logger.Error("provider panic recovered", zap.Any("panic", v))
		}),
		llmmiddleware.TracingMiddleware(),
		llmmiddleware.LoggingMiddleware(logger),
		llmmiddleware.TimeoutMiddleware(cfg.LLM.Timeout),
		llmmiddleware.RetryMiddleware(cfg.LLM.MaxRetries, cfg.LLM.RetryBackoff),
		llmmiddleware.MetricsMiddleware(collector),
	)

	return llmmiddleware.WrapProvider(provider, chain), nil
}
