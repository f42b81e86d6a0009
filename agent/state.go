package agent

import "fmt"

// State 定义 Agent 在会话中的生命周期状态
type State string

const (
	StateInactive State = "inactive" // Registered but not in control
	StateEntering State = "entering" // Becoming current, entry protocol in flight
	StateActive   State = "active"   // Current agent, handling turns
)

// validTransitions 定义合法的状态转换
var validTransitions = map[State][]State{
	StateInactive: {StateEntering},
	StateEntering: {StateActive, StateInactive}, // Entry failure rolls back
	StateActive:   {StateInactive, StateEntering},
	// Active -> Entering covers self-transfer: the current agent re-runs
	// its entry protocol to refresh the state snapshot.
}

// CanTransition 检查状态转换是否合法
func CanTransition(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition 非法状态转换错误
type ErrInvalidTransition struct {
	From State
	To   State
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}
