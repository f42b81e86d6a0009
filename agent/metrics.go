package agent

import "time"

// MetricsHook 接收会话生命周期观测。实现必须并发安全；
// internal/metrics 的 *Collector 满足此契约。
type MetricsHook interface {
	// SessionStarted 在初始坐席激活成功后调用一次。
	SessionStarted()

	// SessionEnded 在会话关闭时调用，reason 为 completed / cancelled / error。
	SessionEnded(reason string, duration time.Duration)

	// RecordTurn 记录一个处理完的回合，status 为 success / error。
	RecordTurn(agent, status string, duration time.Duration, toolSteps int)

	// RecordHandoff 记录一次已提交的坐席交接。
	RecordHandoff(from, to string)
}

// noopMetrics 让热路径免于 nil 判断。
type noopMetrics struct{}

func (noopMetrics) SessionStarted()                               {}
func (noopMetrics) SessionEnded(string, time.Duration)            {}
func (noopMetrics) RecordTurn(string, string, time.Duration, int) {}
func (noopMetrics) RecordHandoff(string, string)                  {}
