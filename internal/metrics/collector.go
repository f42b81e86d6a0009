// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// LLM 指标
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec

	// 会话指标
	sessionsStarted prometheus.Counter
	sessionsEnded   *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	sessionDuration prometheus.Histogram

	// 回合指标
	turnsTotal    *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	turnToolSteps prometheus.Histogram

	// 交接指标
	handoffsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LLM 指标
	c.llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"model", "status"},
	)

	c.llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"model"},
	)

	// 会话指标
	c.sessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of voice sessions started",
		},
	)

	c.sessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total number of voice sessions ended",
		},
		[]string{"reason"}, // reason: completed, cancelled, error
	)

	c.sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active voice sessions",
		},
	)

	c.sessionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Voice session duration in seconds",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200},
		},
	)

	// 回合指标
	c.turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of dialogue turns",
		},
		[]string{"agent", "status"},
	)

	c.turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Dialogue turn duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"agent"},
	)

	c.turnToolSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_tool_steps",
			Help:      "Number of tool invocations per dialogue turn",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// 交接指标
	c.handoffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Total number of agent-to-agent transfers",
		},
		[]string{"from", "to"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🤖 LLM 指标记录
// =============================================================================

// RecordRequest 记录一次推理请求。
// 方法签名满足 llm/middleware 的 MetricsCollector 契约。
func (c *Collector) RecordRequest(model string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.llmRequestsTotal.WithLabelValues(model, status).Inc()
	c.llmRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordTokens 记录消耗的 Token 数
func (c *Collector) RecordTokens(model string, tokens int) {
	c.llmTokensUsed.WithLabelValues(model).Add(float64(tokens))
}

// =============================================================================
// 📞 会话指标记录
// =============================================================================

// SessionStarted 记录会话开始
func (c *Collector) SessionStarted() {
	c.sessionsStarted.Inc()
	c.sessionsActive.Inc()
}

// SessionEnded 记录会话结束
func (c *Collector) SessionEnded(reason string, duration time.Duration) {
	c.sessionsEnded.WithLabelValues(reason).Inc()
	c.sessionsActive.Dec()
	c.sessionDuration.Observe(duration.Seconds())
}

// =============================================================================
// 🔄 回合与交接指标记录
// =============================================================================

// RecordTurn 记录一个对话回合
func (c *Collector) RecordTurn(agent, status string, duration time.Duration, toolSteps int) {
	c.turnsTotal.WithLabelValues(agent, status).Inc()
	c.turnDuration.WithLabelValues(agent).Observe(duration.Seconds())
	c.turnToolSteps.Observe(float64(toolSteps))
}

// RecordHandoff 记录一次坐席交接
func (c *Collector) RecordHandoff(from, to string) {
	c.handoffsTotal.WithLabelValues(from, to).Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
