package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarathfrancis90/livekit-pharmacy-agent/llm"
	"github.com/sarathfrancis90/livekit-pharmacy-agent/types"
)

// DefaultCarryItems is how many of the previous agent's most recent items are
// carried into the next agent's context on a handoff.
const DefaultCarryItems = 6

// Handoff performs the transfer protocol: it swaps which agent is current and
// runs the entry protocol on the new one.
//
// All session mutation happens after the entry inference call succeeds. A
// cancelled or failed call leaves the session exactly as it was: current and
// previous pointers untouched, every agent's stored context untouched.
type Handoff struct {
	carryItems int
	logger     *zap.Logger
}

// NewHandoff creates a controller carrying DefaultCarryItems across transfers.
func NewHandoff(logger *zap.Logger) *Handoff {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handoff{
		carryItems: DefaultCarryItems,
		logger:     logger.With(zap.String("component", "handoff")),
	}
}

// Transfer makes the named agent current and returns it together with its
// entry reply text.
//
// An unregistered target fails with types.ErrUnknownAgent and changes
// nothing; the calling turn fails, the session continues. Transferring to the
// agent that is already current re-runs the entry protocol on purpose: the
// refreshed state summary is the point.
func (h *Handoff) Transfer(ctx context.Context, s *Session, target string) (*Agent, string, error) {
	next, ok := s.agents[target]
	if !ok {
		return nil, "", types.NewError(types.ErrUnknownAgent,
			fmt.Sprintf("transfer target %q is not registered", target)).WithCause(ErrUnknownAgent)
	}

	prev := s.current
	prevName := "<none>"
	if prev != nil {
		prevName = prev.name
	}
	h.logger.Info("transfer requested",
		zap.String("from", prevName),
		zap.String("to", next.name),
	)

	savedState := next.state
	if err := next.transition(StateEntering); err != nil {
		return nil, "", err
	}

	reply, working, err := h.runEntry(ctx, s, next, prev)
	if err != nil {
		// Rollback of the lifecycle flag, not a protocol transition.
		next.state = savedState
		h.logger.Warn("entry protocol failed, transfer aborted",
			zap.String("to", next.name),
			zap.Error(err),
		)
		return nil, "", err
	}

	// Commit. Nothing below can fail.
	if prev != nil && prev != next {
		prev.state = StateInactive
	}
	next.replaceContext(working)
	if err := next.transition(StateActive); err != nil {
		// Unreachable: Entering -> Active is always legal.
		return nil, "", err
	}
	s.previous = prev
	s.current = next

	h.logger.Info("transfer committed",
		zap.String("from", prevName),
		zap.String("to", next.name),
		zap.Int("context_items", working.Len()),
	)
	return next, reply, nil
}

// runEntry builds the next agent's working context and generates its entry
// reply. The stored context is not modified; the caller commits the returned
// working copy on success.
//
// Protocol: own context, plus the previous agent's instruction-excluded
// history truncated to the most recent carryItems and merged with ID dedup,
// plus one system message carrying the shared state summary. The reply is
// generated with tool choice "none" so the announcement cannot trigger tools.
func (h *Handoff) runEntry(ctx context.Context, s *Session, next, prev *Agent) (string, *ChatContext, error) {
	working := next.chatCtx.Copy(false)

	if prev != nil {
		carried := prev.chatCtx.Copy(true).Truncate(h.carryItems)
		added := working.MergeNew(carried.Items())
		h.logger.Debug("carried previous context",
			zap.String("from", prev.name),
			zap.String("to", next.name),
			zap.Int("carried", carried.Len()),
			zap.Int("appended", added),
		)
	}

	working.AppendSystemMessage(fmt.Sprintf(
		"You are the %s agent. Current user data:\n%s",
		next.name, s.userData.Summarize(),
	))

	req, err := s.buildRequest(working.Items(), nil, llm.ToolChoiceNone)
	if err != nil {
		return "", nil, err
	}
	resp, err := s.provider.Completion(types.WithAgentName(ctx, next.name), req)
	if err != nil {
		return "", nil, wrapCollaboratorErr("entry reply generation", err)
	}

	replyMsg := resp.First()
	working.Append(replyMsg.ToItem())
	return replyMsg.Content, working, nil
}

// wrapCollaboratorErr normalizes external failures to the collaborator error
// code while preserving an already-coded cause.
func wrapCollaboratorErr(op string, err error) error {
	if types.GetErrorCode(err) != "" {
		return err
	}
	return types.NewError(types.ErrExternalCollaborator, op+" failed").WithCause(err)
}
